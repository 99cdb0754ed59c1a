package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/identityhub/identityhub/pkg/domain"
)

// MembershipsRepository handles membership persistence.
type MembershipsRepository struct {
	db *sql.DB
}

// NewMembershipsRepository creates a new memberships repository.
func NewMembershipsRepository(db *sql.DB) *MembershipsRepository {
	return &MembershipsRepository{db: db}
}

// MembershipWithWorkspace combines membership and workspace details for
// the expanded /auth/me response.
type MembershipWithWorkspace struct {
	Membership domain.Membership
	Workspace  domain.Workspace
}

// Create creates a new membership.
func (r *MembershipsRepository) Create(ctx context.Context, membership *domain.Membership) error {
	return r.CreateTx(ctx, r.db, membership)
}

// CreateTx creates a new membership within a transaction. The unique
// (workspace, user) constraint surfaces as ErrMembershipAlreadyExists.
func (r *MembershipsRepository) CreateTx(ctx context.Context, q Querier, membership *domain.Membership) error {
	query := `
		INSERT INTO memberships (id, workspace_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := q.ExecContext(ctx, query,
		membership.ID,
		membership.WorkspaceID,
		membership.UserID,
		membership.Role,
		membership.CreatedAt,
		membership.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrMembershipAlreadyExists
	}
	return err
}

// GetByUserAndWorkspace retrieves a membership for a user in a workspace.
func (r *MembershipsRepository) GetByUserAndWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Membership, error) {
	query := `
		SELECT id, workspace_id, user_id, role, created_at, updated_at
		FROM memberships
		WHERE user_id = $1 AND workspace_id = $2
	`

	var membership domain.Membership
	err := r.db.QueryRowContext(ctx, query, userID, workspaceID).Scan(
		&membership.ID,
		&membership.WorkspaceID,
		&membership.UserID,
		&membership.Role,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}

	return &membership, nil
}

// GetByUserID retrieves all memberships for a user in insertion order.
func (r *MembershipsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Membership, error) {
	query := `
		SELECT id, workspace_id, user_id, role, created_at, updated_at
		FROM memberships
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*domain.Membership
	for rows.Next() {
		var membership domain.Membership
		err := rows.Scan(
			&membership.ID,
			&membership.WorkspaceID,
			&membership.UserID,
			&membership.Role,
			&membership.CreatedAt,
			&membership.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, &membership)
	}

	return memberships, rows.Err()
}

// GetByWorkspaceID retrieves all members of a workspace.
func (r *MembershipsRepository) GetByWorkspaceID(ctx context.Context, workspaceID uuid.UUID) ([]*domain.Membership, error) {
	query := `
		SELECT id, workspace_id, user_id, role, created_at, updated_at
		FROM memberships
		WHERE workspace_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*domain.Membership
	for rows.Next() {
		var membership domain.Membership
		err := rows.Scan(
			&membership.ID,
			&membership.WorkspaceID,
			&membership.UserID,
			&membership.Role,
			&membership.CreatedAt,
			&membership.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, &membership)
	}

	return memberships, rows.Err()
}

// GetWithWorkspacesByUserID retrieves memberships joined with workspace
// details, in membership insertion order.
func (r *MembershipsRepository) GetWithWorkspacesByUserID(ctx context.Context, userID uuid.UUID) ([]*MembershipWithWorkspace, error) {
	query := `
		SELECT
			m.id, m.workspace_id, m.user_id, m.role, m.created_at, m.updated_at,
			w.id, w.name, w.created_by, w.updated_by, w.created_at, w.updated_at, w.deleted_at
		FROM memberships m
		INNER JOIN workspaces w ON m.workspace_id = w.id
		WHERE m.user_id = $1 AND w.deleted_at IS NULL
		ORDER BY m.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*MembershipWithWorkspace
	for rows.Next() {
		var result MembershipWithWorkspace
		err := rows.Scan(
			&result.Membership.ID,
			&result.Membership.WorkspaceID,
			&result.Membership.UserID,
			&result.Membership.Role,
			&result.Membership.CreatedAt,
			&result.Membership.UpdatedAt,
			&result.Workspace.ID,
			&result.Workspace.Name,
			&result.Workspace.CreatedBy,
			&result.Workspace.UpdatedBy,
			&result.Workspace.CreatedAt,
			&result.Workspace.UpdatedAt,
			&result.Workspace.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &result)
	}

	return results, rows.Err()
}

// UpdateRole updates the role of a membership.
func (r *MembershipsRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	query := `
		UPDATE memberships
		SET role = $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := r.db.ExecContext(ctx, query, role, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMembershipNotFound
	}

	return nil
}

// Delete removes a membership.
func (r *MembershipsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM memberships WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMembershipNotFound
	}

	return nil
}
