package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/identityhub/identityhub/pkg/domain"
)

// ContactsRepository handles contact persistence. Every query is scoped
// by workspace so that tenants never see each other's rows.
type ContactsRepository struct {
	db *sql.DB
}

// NewContactsRepository creates a new contacts repository.
func NewContactsRepository(db *sql.DB) *ContactsRepository {
	return &ContactsRepository{db: db}
}

// Create creates a new contact.
func (r *ContactsRepository) Create(ctx context.Context, contact *domain.Contact) error {
	query := `
		INSERT INTO contacts (id, workspace_id, name, email, phone, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		contact.ID, contact.WorkspaceID, contact.Name, contact.Email, contact.Phone,
		contact.CreatedBy, contact.CreatedAt, contact.UpdatedAt,
	)
	return err
}

// GetByID retrieves a contact within a workspace.
func (r *ContactsRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Contact, error) {
	query := `
		SELECT id, workspace_id, name, email, phone, created_by, created_at, updated_at, deleted_at
		FROM contacts
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`
	contact := &domain.Contact{}
	err := r.db.QueryRowContext(ctx, query, id, workspaceID).Scan(
		&contact.ID, &contact.WorkspaceID, &contact.Name, &contact.Email, &contact.Phone,
		&contact.CreatedBy, &contact.CreatedAt, &contact.UpdatedAt, &contact.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrContactNotFound
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// ListByWorkspace retrieves all contacts of a workspace.
func (r *ContactsRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Contact, error) {
	query := `
		SELECT id, workspace_id, name, email, phone, created_by, created_at, updated_at, deleted_at
		FROM contacts
		WHERE workspace_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		contact := &domain.Contact{}
		err := rows.Scan(
			&contact.ID, &contact.WorkspaceID, &contact.Name, &contact.Email, &contact.Phone,
			&contact.CreatedBy, &contact.CreatedAt, &contact.UpdatedAt, &contact.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// Update updates a contact's mutable fields.
func (r *ContactsRepository) Update(ctx context.Context, contact *domain.Contact) error {
	query := `
		UPDATE contacts
		SET name = $3, email = $4, phone = $5, updated_at = $6
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		contact.ID, contact.WorkspaceID, contact.Name, contact.Email, contact.Phone, time.Now(),
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

// SoftDelete soft deletes a contact within a workspace.
func (r *ContactsRepository) SoftDelete(ctx context.Context, workspaceID, id uuid.UUID) error {
	query := `
		UPDATE contacts
		SET deleted_at = NOW()
		WHERE id = $1 AND workspace_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

// AttachTag links a tag to a contact. Idempotent.
func (r *ContactsRepository) AttachTag(ctx context.Context, contactID, tagID uuid.UUID) error {
	query := `
		INSERT INTO contact_tags (contact_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, contactID, tagID)
	return err
}

// DetachTag unlinks a tag from a contact.
func (r *ContactsRepository) DetachTag(ctx context.Context, contactID, tagID uuid.UUID) error {
	query := `DELETE FROM contact_tags WHERE contact_id = $1 AND tag_id = $2`
	_, err := r.db.ExecContext(ctx, query, contactID, tagID)
	return err
}

// TagsForContact retrieves the tags attached to a contact.
func (r *ContactsRepository) TagsForContact(ctx context.Context, contactID uuid.UUID) ([]*domain.Tag, error) {
	query := `
		SELECT t.id, t.workspace_id, t.name, t.color, t.created_at
		FROM tags t
		INNER JOIN contact_tags ct ON ct.tag_id = t.id
		WHERE ct.contact_id = $1
		ORDER BY t.name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		tag := &domain.Tag{}
		if err := rows.Scan(&tag.ID, &tag.WorkspaceID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
