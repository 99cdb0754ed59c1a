package domain

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a workspace-scoped CRM contact.
type Contact struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
	Email       *string
	Phone       *string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// Tag labels contacts within a workspace. Names are unique per workspace.
type Tag struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Name        string
	Color       string
	CreatedAt   time.Time
}
