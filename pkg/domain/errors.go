package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrRefreshFailed      = errors.New("refresh token rejected")
)

// Workspace errors
var (
	ErrWorkspaceNotFound       = errors.New("workspace not found")
	ErrMembershipNotFound      = errors.New("membership not found")
	ErrMembershipAlreadyExists = errors.New("membership already exists")
	ErrNotWorkspaceMember      = errors.New("user is not a member of this workspace")
	ErrWorkspaceContextMissing = errors.New("workspace context missing")
)

// Resource errors
var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagAlreadyExists = errors.New("tag already exists")
)

// Validation errors
var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = errors.New("password does not meet requirements")
	ErrInvalidRole  = errors.New("invalid role")
)
