package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/identityhub/identityhub/pkg/auth"
	"github.com/identityhub/identityhub/pkg/domain"
)

func newTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	svc, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
	})
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func issueAccessToken(t *testing.T, svc *auth.TokenService, user *domain.User) string {
	t.Helper()
	pair, err := svc.IssueTokens(user, nil)
	if err != nil {
		t.Fatal(err)
	}
	return pair.AccessToken
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code
}

func TestAuthMiddleware(t *testing.T) {
	svc := newTokenService(t)
	user := &domain.User{ID: uuid.New(), Email: "user@example.com"}
	valid := issueAccessToken(t, svc, user)

	expiredSvc, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:   []byte("access-secret-for-tests"),
		RefreshSecret:  []byte("refresh-secret-for-tests"),
		AccessTokenTTL: -time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	expired := issueAccessToken(t, expiredSvc, user)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantCode   string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "AUTH_REQUIRED"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "AUTH_REQUIRED"},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized, "AUTH_INVALID"},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "AUTH_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = GetUserID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			Auth(svc)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if got := decodeErrorCode(t, rec); got != tt.wantCode {
					t.Errorf("error code = %q, want %q", got, tt.wantCode)
				}
			}
			if tt.wantStatus == http.StatusOK && gotUserID != user.ID {
				t.Errorf("context user ID = %v, want %v", gotUserID, user.ID)
			}
		})
	}
}

func TestAuthMiddlewareAttachesClaims(t *testing.T) {
	svc := newTokenService(t)
	user := &domain.User{ID: uuid.New(), Email: "claims@example.com"}
	token := issueAccessToken(t, svc, user)

	var claims *auth.AccessTokenClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ = GetClaims(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	Auth(svc)(next).ServeHTTP(httptest.NewRecorder(), req)

	if claims == nil {
		t.Fatal("claims not attached to context")
	}
	if claims.Email != user.Email {
		t.Errorf("claims.Email = %q, want %q", claims.Email, user.Email)
	}
}
