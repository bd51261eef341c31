package roles

import (
	"errors"
	"time"
)

// Role represents a role for management.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoleView is a role annotated with its hierarchy level.
type RoleView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Level       int       `json:"level"`
	BuiltIn     bool      `json:"built_in"`
	CreatedAt   time.Time `json:"created_at"`
}

var (
	// ErrDuplicateName is returned when a role name is already taken.
	ErrDuplicateName = errors.New("roles: name already exists")
	// ErrBuiltIn is returned when deleting a role of the level table.
	ErrBuiltIn = errors.New("roles: built-in role cannot be deleted")
	// ErrOutranked is returned when the actor does not outrank the role.
	ErrOutranked = errors.New("roles: role is at or above actor level")
)
