package http

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/identityhub/identityhub/internal/config"
	"github.com/identityhub/identityhub/internal/http/features/contacts"
	"github.com/identityhub/identityhub/internal/http/features/me"
	"github.com/identityhub/identityhub/internal/http/features/session"
	"github.com/identityhub/identityhub/internal/http/features/workspaces"
	"github.com/identityhub/identityhub/internal/http/middleware"
	"github.com/identityhub/identityhub/internal/httputil"
	"github.com/identityhub/identityhub/pkg/auth"
	"github.com/identityhub/identityhub/pkg/repository"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger             *slog.Logger
	DB                 *sql.DB
	AuthService        *auth.Service
	TokenService       *auth.TokenService
	UsersRepo          *repository.UsersRepository
	WorkspacesRepo     *repository.WorkspacesRepository
	MembershipsRepo    *repository.MembershipsRepository
	ContactsRepo       *repository.ContactsRepository
	TagsRepo           *repository.TagsRepository
	AllowedOrigins     []string
	CookieSecure       bool
	MaxRequestBodySize int64
	RateLimitConfig    config.RateLimitConfig
	SecurityHeaders    config.SecurityHeadersConfig
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	cookieConfig := httputil.DefaultCookieConfig()
	cookieConfig.Secure = cfg.CookieSecure

	authGate := middleware.Auth(cfg.TokenService)
	workspaceGate := middleware.RequireWorkspace(cfg.MembershipsRepo)

	// Authentication
	sessionHandler := session.NewHandler(cfg.Logger, cfg.AuthService, cfg.TokenService, cookieConfig)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/auth/register", sessionHandler.Register)
		r.Post("/auth/login", sessionHandler.Login)
	})
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["refresh"])
		r.Post("/auth/refresh", sessionHandler.Refresh)
	})
	r.Post("/auth/logout", sessionHandler.Logout)

	// Profile
	meHandler := me.NewHandler(cfg.Logger, cfg.UsersRepo, cfg.MembershipsRepo)
	r.Group(func(r chi.Router) {
		r.Use(authGate)
		r.Use(rateLimiters["api"])
		r.Get("/auth/me", meHandler.GetMe)
		r.Patch("/auth/me", meHandler.UpdateMe)
	})

	// Workspace management
	workspacesHandler := workspaces.NewHandler(cfg.Logger, cfg.DB, cfg.WorkspacesRepo, cfg.MembershipsRepo, cfg.UsersRepo)
	r.Group(func(r chi.Router) {
		r.Use(authGate)
		r.Use(rateLimiters["api"])
		r.Post("/workspaces", workspacesHandler.Create)
		r.Get("/workspaces", workspacesHandler.List)
		r.Get("/workspaces/{workspaceID}/members", workspacesHandler.ListMembers)
		r.Post("/workspaces/{workspaceID}/members", workspacesHandler.AddMember)
		r.Delete("/workspaces/{workspaceID}/members/{userID}", workspacesHandler.RemoveMember)
	})

	// Workspace-scoped resources
	contactsHandler := contacts.NewHandler(cfg.Logger, cfg.ContactsRepo, cfg.TagsRepo)
	r.Group(func(r chi.Router) {
		r.Use(authGate)
		r.Use(workspaceGate)
		r.Use(rateLimiters["api"])
		r.Get("/contacts", contactsHandler.List)
		r.Post("/contacts", contactsHandler.Create)
		r.Get("/contacts/{contactID}", contactsHandler.Get)
		r.Patch("/contacts/{contactID}", contactsHandler.Update)
		r.Delete("/contacts/{contactID}", contactsHandler.Delete)
		r.Post("/contacts/{contactID}/tags", contactsHandler.AttachTag)
		r.Delete("/contacts/{contactID}/tags/{tagID}", contactsHandler.DetachTag)
		r.Get("/tags", contactsHandler.ListTags)
		r.Post("/tags", contactsHandler.CreateTag)
	})

	return r
}
