package workspaces

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/identityhub/identityhub/internal/http/middleware"
	"github.com/identityhub/identityhub/internal/httputil"
	"github.com/identityhub/identityhub/pkg/domain"
	"github.com/identityhub/identityhub/pkg/repository"
)

// Handler handles workspace management endpoints.
type Handler struct {
	logger      *slog.Logger
	db          *sql.DB
	workspaces  *repository.WorkspacesRepository
	memberships *repository.MembershipsRepository
	users       *repository.UsersRepository
}

// NewHandler creates a new workspaces handler.
func NewHandler(
	logger *slog.Logger,
	db *sql.DB,
	workspaces *repository.WorkspacesRepository,
	memberships *repository.MembershipsRepository,
	users *repository.UsersRepository,
) *Handler {
	return &Handler{
		logger:      logger,
		db:          db,
		workspaces:  workspaces,
		memberships: memberships,
		users:       users,
	}
}

// CreateRequest represents a workspace creation request.
type CreateRequest struct {
	Name string `json:"name"`
}

// WorkspaceResponse represents a workspace with the caller's role.
type WorkspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AddMemberRequest represents a member addition request.
type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// MemberResponse represents one workspace member.
type MemberResponse struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Create creates a workspace with an ADMIN membership for the creator.
// POST /workspaces
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeAuthRequired, "unauthorized")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.DecodeError(w, err)
		return
	}
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now()
	workspace := &domain.Workspace{
		ID:        uuid.New(),
		Name:      req.Name,
		CreatedBy: userID,
		UpdatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	membership := &domain.Membership{
		ID:          uuid.New(),
		WorkspaceID: workspace.ID,
		UserID:      userID,
		Role:        domain.RoleAdmin,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := repository.Tx(r.Context(), h.db, func(tx *sql.Tx) error {
		if err := h.workspaces.CreateTx(r.Context(), tx, workspace); err != nil {
			return err
		}
		return h.memberships.CreateTx(r.Context(), tx, membership)
	})
	if err != nil {
		h.logger.Error("failed to create workspace", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create workspace")
		return
	}

	httputil.JSON(w, http.StatusCreated, WorkspaceResponse{
		ID:        workspace.ID.String(),
		Name:      workspace.Name,
		Role:      string(domain.RoleAdmin),
		CreatedAt: workspace.CreatedAt,
	})
}

// List returns the caller's workspaces with roles.
// GET /workspaces
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeAuthRequired, "unauthorized")
		return
	}

	withWorkspaces, err := h.memberships.GetWithWorkspacesByUserID(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list workspaces", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list workspaces")
		return
	}

	out := make([]WorkspaceResponse, 0, len(withWorkspaces))
	for _, mw := range withWorkspaces {
		out = append(out, WorkspaceResponse{
			ID:        mw.Workspace.ID.String(),
			Name:      mw.Workspace.Name,
			Role:      string(mw.Membership.Role),
			CreatedAt: mw.Workspace.CreatedAt,
		})
	}

	httputil.JSON(w, http.StatusOK, out)
}

// AddMember adds a user to a workspace by email. Caller must be an
// admin of the workspace.
// POST /workspaces/{workspaceID}/members
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	workspaceID, caller, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	role := domain.Role(req.Role)
	if !role.Valid() {
		httputil.Error(w, http.StatusBadRequest, "role must be ADMIN or MEMBER")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "no user with that email")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "failed to add member")
		return
	}

	now := time.Now()
	membership := &domain.Membership{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.memberships.Create(r.Context(), membership); err != nil {
		if errors.Is(err, domain.ErrMembershipAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "user is already a member")
			return
		}
		h.logger.Error("failed to add member", "error", err, "workspace_id", workspaceID, "caller", caller)
		httputil.Error(w, http.StatusInternalServerError, "failed to add member")
		return
	}

	httputil.JSON(w, http.StatusCreated, MemberResponse{
		UserID:    user.ID.String(),
		Role:      string(role),
		CreatedAt: membership.CreatedAt,
	})
}

// RemoveMember removes a user from a workspace. Caller must be an
// admin of the workspace.
// DELETE /workspaces/{workspaceID}/members/{userID}
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	workspaceID, caller, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	membership, err := h.memberships.GetByUserAndWorkspace(r.Context(), targetID, workspaceID)
	if err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			httputil.Error(w, http.StatusNotFound, "membership not found")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	if err := h.memberships.Delete(r.Context(), membership.ID); err != nil {
		h.logger.Error("failed to remove member", "error", err, "workspace_id", workspaceID, "caller", caller)
		httputil.Error(w, http.StatusInternalServerError, "failed to remove member")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMembers returns the members of a workspace the caller belongs to.
// GET /workspaces/{workspaceID}/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeAuthRequired, "unauthorized")
		return
	}

	workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return
	}

	if _, err := h.memberships.GetByUserAndWorkspace(r.Context(), userID, workspaceID); err != nil {
		httputil.Error(w, http.StatusForbidden, "not a member of this workspace")
		return
	}

	members, err := h.memberships.GetByWorkspaceID(r.Context(), workspaceID)
	if err != nil {
		h.logger.Error("failed to list members", "error", err, "workspace_id", workspaceID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, MemberResponse{
			UserID:    m.UserID.String(),
			Role:      string(m.Role),
			CreatedAt: m.CreatedAt,
		})
	}

	httputil.JSON(w, http.StatusOK, out)
}

// requireAdmin resolves the workspaceID URL param and verifies the
// caller holds an ADMIN membership there.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeAuthRequired, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}

	workspaceID, err := uuid.Parse(chi.URLParam(r, "workspaceID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid workspace id")
		return uuid.Nil, uuid.Nil, false
	}

	membership, err := h.memberships.GetByUserAndWorkspace(r.Context(), userID, workspaceID)
	if err != nil || !membership.IsAdmin() {
		httputil.Error(w, http.StatusForbidden, "admin role required")
		return uuid.Nil, uuid.Nil, false
	}

	return workspaceID, userID, true
}
