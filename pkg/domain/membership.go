package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the permission level a membership grants within a workspace.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Membership links a user to a workspace with a role.
// At most one membership exists per (user, workspace) pair.
type Membership struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAdmin returns true if the membership grants admin rights.
func (m *Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}
