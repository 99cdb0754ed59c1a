package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/identityhub/identityhub/pkg/domain"
)

type stubMembershipResolver struct {
	membership *domain.Membership
	err        error
}

func (s *stubMembershipResolver) GetByUserAndWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) (*domain.Membership, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.membership, nil
}

func TestRequireWorkspace(t *testing.T) {
	userID := uuid.New()
	workspaceID := uuid.New()
	membership := &domain.Membership{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Role:        domain.RoleAdmin,
	}

	tests := []struct {
		name          string
		header        string
		authenticated bool
		resolver      *stubMembershipResolver
		wantStatus    int
		wantCode      string
	}{
		{
			name:          "member passes",
			header:        workspaceID.String(),
			authenticated: true,
			resolver:      &stubMembershipResolver{membership: membership},
			wantStatus:    http.StatusOK,
		},
		{
			name:          "missing header",
			header:        "",
			authenticated: true,
			resolver:      &stubMembershipResolver{membership: membership},
			wantStatus:    http.StatusBadRequest,
			wantCode:      "WORKSPACE_CONTEXT_MISSING",
		},
		{
			name:          "malformed workspace id",
			header:        "not-a-uuid",
			authenticated: true,
			resolver:      &stubMembershipResolver{membership: membership},
			wantStatus:    http.StatusBadRequest,
			wantCode:      "WORKSPACE_CONTEXT_MISSING",
		},
		{
			name:          "not a member",
			header:        workspaceID.String(),
			authenticated: true,
			resolver:      &stubMembershipResolver{err: domain.ErrMembershipNotFound},
			wantStatus:    http.StatusForbidden,
		},
		{
			name:          "unauthenticated",
			header:        workspaceID.String(),
			authenticated: false,
			resolver:      &stubMembershipResolver{membership: membership},
			wantStatus:    http.StatusUnauthorized,
			wantCode:      "AUTH_REQUIRED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotWorkspaceID uuid.UUID
			var gotMembership *domain.Membership
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotWorkspaceID, _ = GetWorkspaceID(r.Context())
				gotMembership, _ = GetMembership(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
			if tt.header != "" {
				req.Header.Set(WorkspaceHeader, tt.header)
			}
			if tt.authenticated {
				req = req.WithContext(context.WithValue(req.Context(), UserIDKey, userID))
			}
			rec := httptest.NewRecorder()

			RequireWorkspace(tt.resolver)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if got := decodeErrorCode(t, rec); got != tt.wantCode {
					t.Errorf("error code = %q, want %q", got, tt.wantCode)
				}
			}
			if tt.wantStatus == http.StatusOK {
				if gotWorkspaceID != workspaceID {
					t.Errorf("context workspace ID = %v, want %v", gotWorkspaceID, workspaceID)
				}
				if gotMembership == nil || gotMembership.Role != domain.RoleAdmin {
					t.Errorf("context membership = %+v, want role ADMIN", gotMembership)
				}
			}
		})
	}
}
