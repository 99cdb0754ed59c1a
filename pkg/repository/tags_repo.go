package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/identityhub/identityhub/pkg/domain"
)

// TagsRepository handles tag persistence.
type TagsRepository struct {
	db *sql.DB
}

// NewTagsRepository creates a new tags repository.
func NewTagsRepository(db *sql.DB) *TagsRepository {
	return &TagsRepository{db: db}
}

// Create creates a new tag. Duplicate names within a workspace surface
// as ErrTagAlreadyExists.
func (r *TagsRepository) Create(ctx context.Context, tag *domain.Tag) error {
	query := `
		INSERT INTO tags (id, workspace_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		tag.ID, tag.WorkspaceID, tag.Name, tag.Color, tag.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrTagAlreadyExists
	}
	return err
}

// GetByID retrieves a tag within a workspace.
func (r *TagsRepository) GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*domain.Tag, error) {
	query := `
		SELECT id, workspace_id, name, color, created_at
		FROM tags
		WHERE id = $1 AND workspace_id = $2
	`
	tag := &domain.Tag{}
	err := r.db.QueryRowContext(ctx, query, id, workspaceID).Scan(
		&tag.ID, &tag.WorkspaceID, &tag.Name, &tag.Color, &tag.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// ListByWorkspace retrieves all tags of a workspace.
func (r *TagsRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Tag, error) {
	query := `
		SELECT id, workspace_id, name, color, created_at
		FROM tags
		WHERE workspace_id = $1
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, workspaceID)
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

// Delete removes a tag within a workspace.
func (r *TagsRepository) Delete(ctx context.Context, workspaceID, id uuid.UUID) error {
	query := `DELETE FROM tags WHERE id = $1 AND workspace_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTagNotFound
	}
	return nil
}
