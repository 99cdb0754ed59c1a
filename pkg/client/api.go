package client

import (
	"context"
	"net/http"
	"time"
)

// User is a user profile as returned by the API.
type User struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	Name        *string      `json:"name,omitempty"`
	AvatarURL   *string      `json:"avatar_url,omitempty"`
	Memberships []Membership `json:"memberships,omitempty"`
}

// Membership is an expanded membership on a user profile.
type Membership struct {
	WorkspaceID   string `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
	Role          string `json:"role"`
}

// Workspace is a workspace with the caller's role.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Contact is a workspace-scoped contact.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Tags      []Tag     `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag labels contacts within a workspace.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expires_in"`
	User        *User  `json:"user,omitempty"`
}

// Register creates an account and starts a session.
func (c *Client) Register(ctx context.Context, email, password, name string) (*User, error) {
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
}

// Login authenticates with email and password. On success the access
// token is stored and the refresh cookie lands in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if err := c.setAccessToken(resp.AccessToken); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout ends the session locally and server-side. Idempotent.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	err = c.do(req, nil)
	c.clearSession()
	return err
}

// Me returns the current user with memberships expanded.
func (c *Client) Me(ctx context.Context) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate holds mutable profile fields; nil fields are untouched.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UpdateMe updates the current user's profile.
func (c *Client) UpdateMe(ctx context.Context, update ProfileUpdate) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodPatch, "/auth/me", update)
	if err != nil {
		return nil, err
	}
	var user User
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateWorkspace creates a workspace owned by the caller.
func (c *Client) CreateWorkspace(ctx context.Context, name string) (*Workspace, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/workspaces", map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	var workspace Workspace
	if err := c.do(req, &workspace); err != nil {
		return nil, err
	}
	return &workspace, nil
}

// ListWorkspaces returns the caller's workspaces.
func (c *Client) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/workspaces", nil)
	if err != nil {
		return nil, err
	}
	var workspaces []Workspace
	if err := c.do(req, &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

// AddMember adds a user to a workspace by email.
func (c *Client) AddMember(ctx context.Context, workspaceID, email, role string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/workspaces/"+workspaceID+"/members", map[string]string{
		"email": email,
		"role":  role,
	})
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// RemoveMember removes a user from a workspace.
func (c *Client) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/workspaces/"+workspaceID+"/members/"+userID, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ContactInput holds contact fields for create/update.
type ContactInput struct {
	Name  string  `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// ListContacts returns the contacts of the active workspace.
func (c *Client) ListContacts(ctx context.Context) ([]Contact, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/contacts", nil)
	if err != nil {
		return nil, err
	}
	var contacts []Contact
	if err := c.do(req, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// CreateContact creates a contact in the active workspace.
func (c *Client) CreateContact(ctx context.Context, input ContactInput) (*Contact, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/contacts", input)
	if err != nil {
		return nil, err
	}
	var contact Contact
	if err := c.do(req, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// UpdateContact updates a contact in the active workspace.
func (c *Client) UpdateContact(ctx context.Context, contactID string, input ContactInput) (*Contact, error) {
	req, err := c.newRequest(ctx, http.MethodPatch, "/contacts/"+contactID, input)
	if err != nil {
		return nil, err
	}
	var contact Contact
	if err := c.do(req, &contact); err != nil {
		return nil, err
	}
	return &contact, nil
}

// DeleteContact deletes a contact in the active workspace.
func (c *Client) DeleteContact(ctx context.Context, contactID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/contacts/"+contactID, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// CreateTag creates a tag in the active workspace.
func (c *Client) CreateTag(ctx context.Context, name, color string) (*Tag, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/tags", map[string]string{"name": name, "color": color})
	if err != nil {
		return nil, err
	}
	var tag Tag
	if err := c.do(req, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListTags returns the tags of the active workspace.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/tags", nil)
	if err != nil {
		return nil, err
	}
	var tags []Tag
	if err := c.do(req, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// AttachTag attaches a tag to a contact.
func (c *Client) AttachTag(ctx context.Context, contactID, tagID string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/contacts/"+contactID+"/tags", map[string]string{"tag_id": tagID})
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// DetachTag removes a tag from a contact.
func (c *Client) DetachTag(ctx context.Context, contactID, tagID string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/contacts/"+contactID+"/tags/"+tagID, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
