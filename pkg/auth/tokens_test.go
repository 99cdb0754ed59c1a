package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/identityhub/identityhub/pkg/domain"
)

func testTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{
		AccessSecret:  []byte("access-secret-for-tests"),
		RefreshSecret: []byte("refresh-secret-for-tests"),
		Issuer:        "identityhub-test",
	})
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc
}

func testUser() *domain.User {
	return &domain.User{
		ID:    uuid.New(),
		Email: "user@example.com",
	}
}

func TestNewTokenServiceValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  TokenConfig
		wantErr bool
	}{
		{
			name: "valid",
			config: TokenConfig{
				AccessSecret:  []byte("a-secret"),
				RefreshSecret: []byte("r-secret"),
			},
			wantErr: false,
		},
		{
			name: "missing access secret",
			config: TokenConfig{
				RefreshSecret: []byte("r-secret"),
			},
			wantErr: true,
		},
		{
			name: "missing refresh secret",
			config: TokenConfig{
				AccessSecret: []byte("a-secret"),
			},
			wantErr: true,
		},
		{
			name: "identical secrets",
			config: TokenConfig{
				AccessSecret:  []byte("same-secret"),
				RefreshSecret: []byte("same-secret"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenService(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTokenService() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewTokenServiceDefaults(t *testing.T) {
	svc := testTokenService(t)
	if got := svc.AccessTokenTTL(); got != DefaultAccessTokenTTL {
		t.Errorf("AccessTokenTTL() = %v, want %v", got, DefaultAccessTokenTTL)
	}
	if got := svc.RefreshTokenTTL(); got != DefaultRefreshTokenTTL {
		t.Errorf("RefreshTokenTTL() = %v, want %v", got, DefaultRefreshTokenTTL)
	}
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	svc := testTokenService(t)
	user := testUser()
	memberships := []*domain.Membership{
		{Role: domain.RoleAdmin},
		{Role: domain.RoleMember},
	}

	pair, err := svc.IssueTokens(user, memberships)
	if err != nil {
		t.Fatalf("IssueTokens() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("IssueTokens() returned empty token")
	}
	if pair.AccessToken == pair.RefreshToken {
		t.Error("access and refresh tokens are identical")
	}
	if pair.ExpiresIn != int(DefaultAccessTokenTTL.Seconds()) {
		t.Errorf("ExpiresIn = %d, want %d", pair.ExpiresIn, int(DefaultAccessTokenTTL.Seconds()))
	}

	claims, err := svc.VerifyAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("claims.Subject = %q, want %q", claims.Subject, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("claims.Email = %q, want %q", claims.Email, user.Email)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "ADMIN" || claims.Roles[1] != "MEMBER" {
		t.Errorf("claims.Roles = %v, want [ADMIN MEMBER]", claims.Roles)
	}
}

func TestIssueTokensNoMemberships(t *testing.T) {
	svc := testTokenService(t)

	pair, err := svc.IssueTokens(testUser(), nil)
	if err != nil {
		t.Fatalf("IssueTokens() error = %v", err)
	}
	claims, err := svc.VerifyAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}
	if claims.Roles == nil {
		t.Error("claims.Roles is nil, want empty slice")
	}
	if len(claims.Roles) != 0 {
		t.Errorf("claims.Roles = %v, want empty", claims.Roles)
	}
}

func TestVerifyAccessTokenRejectsBadTokens(t *testing.T) {
	svc := testTokenService(t)
	pair, err := svc.IssueTokens(testUser(), nil)
	if err != nil {
		t.Fatal(err)
	}

	other, err := NewTokenService(TokenConfig{
		AccessSecret:  []byte("different-access"),
		RefreshSecret: []byte("different-refresh"),
	})
	if err != nil {
		t.Fatal(err)
	}
	otherPair, err := other.IssueTokens(testUser(), nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", otherPair.AccessToken},
		{"refresh token as access token", pair.RefreshToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.VerifyAccessToken(tt.token); !errors.Is(err, domain.ErrInvalidToken) {
				t.Errorf("VerifyAccessToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestVerifyExpiredAccessToken(t *testing.T) {
	svc, err := NewTokenService(TokenConfig{
		AccessSecret:   []byte("a-secret"),
		RefreshSecret:  []byte("r-secret"),
		AccessTokenTTL: -time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}

	pair, err := svc.IssueTokens(testUser(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.VerifyAccessToken(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("VerifyAccessToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRefreshToken(t *testing.T) {
	svc := testTokenService(t)
	user := testUser()

	pair, err := svc.IssueTokens(user, nil)
	if err != nil {
		t.Fatal(err)
	}

	userID, err := svc.VerifyRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("VerifyRefreshToken() error = %v", err)
	}
	if userID != user.ID {
		t.Errorf("VerifyRefreshToken() = %v, want %v", userID, user.ID)
	}

	// An access token must never pass as a refresh token.
	if _, err := svc.VerifyRefreshToken(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("VerifyRefreshToken(access token) error = %v, want ErrInvalidToken", err)
	}
}
