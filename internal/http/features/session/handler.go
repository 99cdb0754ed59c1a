package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/identityhub/identityhub/internal/httputil"
	"github.com/identityhub/identityhub/pkg/auth"
	"github.com/identityhub/identityhub/pkg/domain"
)

// Handler handles authentication endpoints.
type Handler struct {
	logger       *slog.Logger
	authService  *auth.Service
	tokens       *auth.TokenService
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new session handler.
func NewHandler(logger *slog.Logger, authService *auth.Service, tokens *auth.TokenService, cookieConfig httputil.CookieConfig) *Handler {
	return &Handler{
		logger:       logger,
		authService:  authService,
		tokens:       tokens,
		cookieConfig: cookieConfig,
	}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the user profile included in token responses.
type UserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// TokenResponse represents a token response. The refresh token never
// appears here; it travels only in the HttpOnly cookie.
type TokenResponse struct {
	AccessToken string        `json:"accessToken"`
	ExpiresIn   int           `json:"expires_in"`
	User        *UserResponse `json:"user,omitempty"`
}

// Register handles user registration.
// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			httputil.Error(w, http.StatusConflict, "user already exists")
		case errors.Is(err, domain.ErrInvalidEmail):
			httputil.Error(w, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, domain.ErrWeakPassword):
			httputil.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		default:
			h.logger.Error("registration failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	h.issueAndWrite(w, r, user, http.StatusCreated)
}

// Login handles user login.
// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httputil.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.logger.Error("authentication failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	h.issueAndWrite(w, r, user, http.StatusOK)
}

// Refresh exchanges the refresh cookie for a new access token and a
// rotated refresh cookie.
// POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := httputil.GetRefreshTokenFromCookie(r)
	if !ok {
		httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeRefreshFailed, "refresh token not found")
		return
	}

	userID, err := h.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		httputil.ClearRefreshCookie(w, h.cookieConfig)
		httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeRefreshFailed, "invalid or expired refresh token")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.ClearRefreshCookie(w, h.cookieConfig)
			httputil.ErrorCode(w, http.StatusUnauthorized, httputil.CodeRefreshFailed, "invalid or expired refresh token")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	h.issueAndWrite(w, r, user, http.StatusOK)
}

// Logout clears the refresh cookie. Idempotent even when already
// logged out; there is no server-side session to revoke.
// POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	httputil.ClearRefreshCookie(w, h.cookieConfig)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) issueAndWrite(w http.ResponseWriter, r *http.Request, user *domain.User, status int) {
	memberships, err := h.authService.Memberships(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to load memberships", "error", err, "user_id", user.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to issue session")
		return
	}

	pair, err := h.tokens.IssueTokens(user, memberships)
	if err != nil {
		h.logger.Error("failed to issue tokens", "error", err, "user_id", user.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to issue session")
		return
	}

	httputil.SetRefreshCookie(w, pair.RefreshToken, h.tokens.RefreshTokenTTL(), h.cookieConfig)
	httputil.JSON(w, status, TokenResponse{
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
		User: &UserResponse{
			ID:        user.ID.String(),
			Email:     user.Email,
			Name:      user.Name,
			AvatarURL: user.AvatarURL,
		},
	})
}
