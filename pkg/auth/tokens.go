package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/identityhub/identityhub/pkg/domain"
)

// Default token lifetimes
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenConfig holds token signing configuration.
// Access and refresh secrets must differ so that leaking one cannot
// forge the other.
type TokenConfig struct {
	AccessSecret    []byte
	RefreshSecret   []byte
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// AccessTokenClaims represents the claims in an access token.
// Roles carries one entry per membership, in membership insertion order,
// and is an empty array (never null) for users without memberships.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles"`
}

// TokenPair represents an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	ExpiresAt    time.Time
}

// TokenService issues and verifies access and refresh tokens.
type TokenService struct {
	config TokenConfig
}

// NewTokenService creates a token service. Misconfigured secrets are a
// startup error, never a per-request one.
func NewTokenService(config TokenConfig) (*TokenService, error) {
	if len(config.AccessSecret) == 0 {
		return nil, fmt.Errorf("access token secret is required")
	}
	if len(config.RefreshSecret) == 0 {
		return nil, fmt.Errorf("refresh token secret is required")
	}
	if string(config.AccessSecret) == string(config.RefreshSecret) {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if config.RefreshTokenTTL == 0 {
		config.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	return &TokenService{config: config}, nil
}

// AccessTokenTTL returns the access token TTL.
func (s *TokenService) AccessTokenTTL() time.Duration {
	return s.config.AccessTokenTTL
}

// RefreshTokenTTL returns the refresh token TTL.
func (s *TokenService) RefreshTokenTTL() time.Duration {
	return s.config.RefreshTokenTTL
}

// IssueTokens creates an access/refresh token pair for a user.
// Memberships determine the roles claim; their order is preserved.
func (s *TokenService) IssueTokens(user *domain.User, memberships []*domain.Membership) (*TokenPair, error) {
	now := time.Now()

	roles := make([]string, 0, len(memberships))
	for _, m := range memberships {
		roles = append(roles, string(m.Role))
	}

	accessExpiry := now.Add(s.config.AccessTokenTTL)
	accessClaims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			Issuer:    s.config.Issuer,
		},
		Email: user.Email,
		Roles: roles,
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.config.AccessSecret)
	if err != nil {
		return nil, err
	}

	refreshClaims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.RefreshTokenTTL)),
		Issuer:    s.config.Issuer,
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.config.RefreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.config.AccessTokenTTL.Seconds()),
		ExpiresAt:    accessExpiry,
	}, nil
}

// VerifyAccessToken validates an access token and returns the claims.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.AccessSecret, nil
	})
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessTokenClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// VerifyRefreshToken validates a refresh token and returns the user ID.
func (s *TokenService) VerifyRefreshToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.RefreshSecret, nil
	})
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return uuid.Nil, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return userID, nil
}
