package rbac

import "time"

// Role represents a named bundle of permissions.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission is a catalog row for an atomic capability.
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// RoleGrant ties a permission to a role.
type RoleGrant struct {
	RoleID       int64
	PermissionID int64
	CreatedAt    time.Time
}

// RoleAssignment links a principal to a role.
type RoleAssignment struct {
	UserID    int64
	RoleID    int64
	CreatedAt time.Time
}

// HeldRole is a role held by a principal together with the permission names it grants.
type HeldRole struct {
	Role
	Permissions []string
}

// Principal identifies an authenticated actor. Principals are owned by user management;
// only the id is read here.
type Principal struct {
	ID          int64
	DisplayName string
	Status      string
}

// AssignResult describes what a replace operation actually stored.
type AssignResult struct {
	// Applied lists the names (or ids) written after resolution.
	Applied []string
	// Dropped lists requested names (or ids) that did not match the catalog.
	Dropped []string
}
