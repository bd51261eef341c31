package rbac

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = errors.New("rbac: not found")
	// ErrRoleNameRequired is returned when a role lookup is made with a blank name.
	ErrRoleNameRequired = errors.New("rbac: role name required")
	// ErrUnknownPermission is returned when a permission string is not in the catalog.
	ErrUnknownPermission = errors.New("rbac: unknown permission")
	// ErrNoPrincipal is returned when no principal is bound to the request context.
	ErrNoPrincipal = errors.New("rbac: no principal in context")
)

// StoreError wraps a failure of the persistence layer so callers can tell
// "the query failed" apart from "the answer is no".
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("rbac: store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreFailure reports whether err originates from the store.
func IsStoreFailure(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
