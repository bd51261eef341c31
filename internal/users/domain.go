package users

import (
	"errors"
	"time"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User is a principal record. Roles are managed through the rbac package.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the account may act.
func (u User) IsActive() bool {
	return u.Status == StatusActive
}

var (
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("users: email already exists")
	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("users: invalid status")
	// ErrOutranked is returned when the actor does not outrank the target user.
	ErrOutranked = errors.New("users: target is at or above actor level")
	// ErrSelfDisable is returned when an actor tries to disable itself.
	ErrSelfDisable = errors.New("users: cannot disable own account")
)

func validStatus(status string) bool {
	return status == StatusActive || status == StatusDisabled
}
