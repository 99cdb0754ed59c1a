package contacts

import (
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

// Handler handles workspace-scoped contact and tag endpoints.
// All routes run behind the workspace middleware, so the active
// workspace is always present in the context here.
type Handler struct {
	logger   *slog.Logger
	contacts *repository.ContactsRepository
	tags     *repository.TagsRepository
}

// NewHandler creates a new contacts handler.
func NewHandler(logger *slog.Logger, contacts *repository.ContactsRepository, tags *repository.TagsRepository) *Handler {
	return &Handler{
		logger:   logger,
		contacts: contacts,
		tags:     tags,
	}
}

// ContactRequest represents a contact create/update request.
type ContactRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// TagRef names a tag to attach.
type TagRef struct {
	TagID string `json:"tag_id"`
}

// TagRequest represents a tag creation request.
type TagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ContactResponse represents a contact.
type ContactResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     *string       `json:"email,omitempty"`
	Phone     *string       `json:"phone,omitempty"`
	Tags      []TagResponse `json:"tags"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// TagResponse represents a tag.
type TagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// List returns all contacts in the active workspace.
// GET /contacts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := middleware.GetWorkspaceID(r.Context())
	if !ok {
		httputil.ErrorCode(w, http.StatusBadRequest, httputil.CodeWorkspaceContextMissing, "workspace header missing")
		return
	}

	contacts, err := h.contacts.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		h.logger.Error("failed to list contacts", "error", err, "workspace_id", workspaceID)
		httputil.Error(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	out := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, h.toResponse(r, c))
	}
	httputil.JSON(w, http.StatusOK, out)
}

// Create creates a contact in the active workspace.
// POST /contacts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID, _ := middleware.GetWorkspaceID(r.Context())
	userID, _ := middleware.GetUserID(r.Context())

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.DecodeError(w, err)
		return
	}
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now()
	contact := &domain.Contact{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.contacts.Create(r.Context(), contact); err != nil {
		h.logger.Error("failed to create contact", "error", err, "workspace_id", workspaceID)
		httputil.Error(w, http.StatusInternalServerError, "failed to create contact")
		return
	}

	httputil.JSON(w, http.StatusCreated, h.toResponse(r, contact))
}

// Get returns a single contact.
// GET /contacts/{contactID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	contact, ok := h.lookup(w, r)
	if !ok {
		return
	}
	httputil.JSON(w, http.StatusOK, h.toResponse(r, contact))
}

// Update updates a contact's fields.
// PATCH /contacts/{contactID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	contact, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	if req.Name != "" {
		contact.Name = req.Name
	}
	if req.Email != nil {
		contact.Email = req.Email
	}
	if req.Phone != nil {
		contact.Phone = req.Phone
	}

	if err := h.contacts.Update(r.Context(), contact); err != nil {
		h.logger.Error("failed to update contact", "error", err, "contact_id", contact.ID)
		httputil.Error(w, http.StatusInternalServerError, "failed to update contact")
		return
	}

	httputil.JSON(w, http.StatusOK, h.toResponse(r, contact))
}

// Delete soft deletes a contact.
// DELETE /contacts/{contactID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	contact, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := h.contacts.SoftDelete(r.Context(), contact.WorkspaceID, contact.ID); err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to delete contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AttachTag attaches a workspace tag to a contact.
// POST /contacts/{contactID}/tags
func (h *Handler) AttachTag(w http.ResponseWriter, r *http.Request) {
	contact, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req TagRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.DecodeError(w, err)
		return
	}
	tagID, err := uuid.Parse(req.TagID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	// Tag must belong to the same workspace as the contact.
	if _, err := h.tags.GetByID(r.Context(), contact.WorkspaceID, tagID); err != nil {
		httputil.Error(w, http.StatusNotFound, "tag not found")
		return
	}

	if err := h.contacts.AttachTag(r.Context(), contact.ID, tagID); err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to attach tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DetachTag removes a tag from a contact.
// DELETE /contacts/{contactID}/tags/{tagID}
func (h *Handler) DetachTag(w http.ResponseWriter, r *http.Request) {
	contact, ok := h.lookup(w, r)
	if !ok {
		return
	}

	tagID, err := uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	if err := h.contacts.DetachTag(r.Context(), contact.ID, tagID); err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to detach tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTags returns all tags in the active workspace.
// GET /tags
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	workspaceID, _ := middleware.GetWorkspaceID(r.Context())

	tags, err := h.tags.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to list tags")
		return
	}

	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagResponse{ID: t.ID.String(), Name: t.Name, Color: t.Color})
	}
	httputil.JSON(w, http.StatusOK, out)
}

// CreateTag creates a tag in the active workspace.
// POST /tags
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	workspaceID, _ := middleware.GetWorkspaceID(r.Context())

	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.DecodeError(w, err)
		return
	}
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	tag := &domain.Tag{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Name:        req.Name,
		Color:       req.Color,
		CreatedAt:   time.Now(),
	}
	if err := h.tags.Create(r.Context(), tag); err != nil {
		if errors.Is(err, domain.ErrTagAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "tag already exists")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "failed to create tag")
		return
	}

	httputil.JSON(w, http.StatusCreated, TagResponse{ID: tag.ID.String(), Name: tag.Name, Color: tag.Color})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*domain.Contact, bool) {
	workspaceID, ok := middleware.GetWorkspaceID(r.Context())
	if !ok {
		httputil.ErrorCode(w, http.StatusBadRequest, httputil.CodeWorkspaceContextMissing, "workspace header missing")
		return nil, false
	}

	contactID, err := uuid.Parse(chi.URLParam(r, "contactID"))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid contact id")
		return nil, false
	}

	contact, err := h.contacts.GetByID(r.Context(), workspaceID, contactID)
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			httputil.Error(w, http.StatusNotFound, "contact not found")
			return nil, false
		}
		httputil.Error(w, http.StatusInternalServerError, "failed to load contact")
		return nil, false
	}
	return contact, true
}

func (h *Handler) toResponse(r *http.Request, c *domain.Contact) ContactResponse {
	tags, err := h.contacts.TagsForContact(r.Context(), c.ID)
	if err != nil {
		h.logger.Warn("failed to load contact tags", "error", err, "contact_id", c.ID)
	}
	tagOut := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		tagOut = append(tagOut, TagResponse{ID: t.ID.String(), Name: t.Name, Color: t.Color})
	}
	return ContactResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Tags:      tagOut,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
