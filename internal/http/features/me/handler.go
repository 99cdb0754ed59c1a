package me

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/identityhub/identityhub/internal/http/middleware"
	"github.com/identityhub/identityhub/internal/httputil"
	"github.com/identityhub/identityhub/pkg/domain"
	"github.com/identityhub/identityhub/pkg/repository"
)

// ProfileStore is the subset of the users repository the handler needs.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
}

// MembershipDirectory lists a user's memberships with their workspaces.
type MembershipDirectory interface {
	GetWithWorkspacesByUserID(ctx context.Context, userID uuid.UUID) ([]*repository.MembershipWithWorkspace, error)
}

// Handler handles user profile endpoints.
type Handler struct {
	logger      *slog.Logger
	users       ProfileStore
	memberships MembershipDirectory
}

// NewHandler creates a new me handler.
func NewHandler(logger *slog.Logger, users ProfileStore, memberships MembershipDirectory) *Handler {
	return &Handler{
		logger:      logger,
		users:       users,
		memberships: memberships,
	}
}

// MembershipResponse is one expanded membership in the profile response.
type MembershipResponse struct {
	WorkspaceID   string `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
	Role          string `json:"role"`
}

// UserResponse represents the user profile response with memberships
// expanded.
type UserResponse struct {
	ID          string               `json:"id"`
	Email       string               `json:"email"`
	Name        *string              `json:"name,omitempty"`
	AvatarURL   *string              `json:"avatar_url,omitempty"`
	Memberships []MembershipResponse `json:"memberships"`
}

// UpdateRequest represents a profile update request.
type UpdateRequest struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// GetMe returns the current user's profile with memberships expanded.
// GET /auth/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeAuthRequired, "unauthorized")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to load user", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	h.writeProfile(w, r, user)
}

// UpdateMe updates the current user's mutable profile fields.
// PATCH /auth/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeAuthRequired, "unauthorized")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to load user", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	if req.Name != nil {
		user.Name = req.Name
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}

	if err := h.users.UpdateProfile(r.Context(), user); err != nil {
		h.logger.Error("failed to update profile", "error", err, "user_id", userID)
		httputil.Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.writeProfile(w, r, user)
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, user *domain.User) {
	withWorkspaces, err := h.memberships.GetWithWorkspacesByUserID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to load memberships", "error", err, "user_id", user.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	// Empty slice, not null, when the user has no memberships.
	memberships := make([]MembershipResponse, 0, len(withWorkspaces))
	for _, mw := range withWorkspaces {
		memberships = append(memberships, MembershipResponse{
			WorkspaceID:   mw.Workspace.ID.String(),
			WorkspaceName: mw.Workspace.Name,
			Role:          string(mw.Membership.Role),
		})
	}

	httputil.JSON(w, http.StatusOK, UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		Name:        user.Name,
		AvatarURL:   user.AvatarURL,
		Memberships: memberships,
	})
}
