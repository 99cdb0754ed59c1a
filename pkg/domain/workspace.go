package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the tenant boundary scoping all business data.
type Workspace struct {
	ID        uuid.UUID
	Name      string
	CreatedBy uuid.UUID
	UpdatedBy uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
