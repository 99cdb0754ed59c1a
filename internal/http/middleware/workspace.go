package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/identityhub/identityhub/internal/httputil"
	"github.com/identityhub/identityhub/pkg/domain"
)

// WorkspaceHeader carries the active workspace ID on tenant-scoped
// requests. Its absence is valid at the auth gate but a 400 here.
const WorkspaceHeader = "X-Workspace-Id"

// MembershipResolver looks up a user's membership in a workspace.
// Satisfied by repository.MembershipsRepository.
type MembershipResolver interface {
	GetByUserAndWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Membership, error)
}

// RequireWorkspace creates middleware that resolves the workspace header
// into a verified membership. Runs after Auth.
//
// A missing header is WORKSPACE_CONTEXT_MISSING (400, recoverable by the
// caller re-supplying it); a workspace the caller does not belong to is
// 403. The membership is attached to the context for handlers that need
// the caller's role.
func RequireWorkspace(memberships MembershipResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(WorkspaceHeader)
			if header == "" {
				httputil.ErrorCode(w, http.StatusBadRequest, httputil.CodeWorkspaceContextMissing, "workspace header missing")
				return
			}

			workspaceID, err := uuid.Parse(header)
			if err != nil {
				httputil.ErrorCode(w, http.StatusBadRequest, httputil.CodeWorkspaceContextMissing, "invalid workspace id")
				return
			}

			userID, ok := GetUserID(r.Context())
			if !ok {
				httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeAuthRequired, "unauthorized")
				return
			}

			membership, err := memberships.GetByUserAndWorkspace(r.Context(), userID, workspaceID)
			if err != nil {
				if errors.Is(err, domain.ErrMembershipNotFound) {
					httputil.Error(w, http.StatusForbidden, "not a member of this workspace")
					return
				}
				httputil.Error(w, http.StatusInternalServerError, "failed to resolve workspace")
				return
			}

			ctx := context.WithValue(r.Context(), WorkspaceIDKey, workspaceID)
			ctx = context.WithValue(ctx, MembershipKey, membership)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetWorkspaceID extracts the active workspace ID from the request context.
func GetWorkspaceID(ctx context.Context) (uuid.UUID, bool) {
	workspaceID, ok := ctx.Value(WorkspaceIDKey).(uuid.UUID)
	return workspaceID, ok
}

// GetMembership extracts the caller's membership from the request context.
func GetMembership(ctx context.Context) (*domain.Membership, bool) {
	membership, ok := ctx.Value(MembershipKey).(*domain.Membership)
	return membership, ok
}
