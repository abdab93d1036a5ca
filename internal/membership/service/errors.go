package service

import "errors"

// Authentication and access.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrNoToken            = errors.New("no_token")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrPrincipalNotFound  = errors.New("principal_not_found")
	ErrForbidden          = errors.New("forbidden")
	ErrSigning            = errors.New("signing_failed")
)

// Invitations and registration.
var (
	ErrInvalidEmail               = errors.New("invalid email address")
	ErrDuplicateRecipient         = errors.New("an alumni is already registered with this email")
	ErrInvitationAlreadyPending   = errors.New("an invitation has already been sent to this email")
	ErrInvalidOrExpiredInvitation = errors.New("invalid or expired invitation")
	ErrEmailMismatch              = errors.New("email does not match the invitation")
	ErrDeliveryFailed             = errors.New("failed to send invitation email")
	ErrInvalidRegistration        = errors.New("invalid registration request")
)

// Account management.
var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminAlreadyExists = errors.New("an admin already exists with this email")
	ErrAlumniNotFound     = errors.New("alumni not found")
	ErrEntryNotFound      = errors.New("entry not found")
)

// Feed.
var (
	ErrPostNotFound  = errors.New("post not found")
	ErrNotPostAuthor = errors.New("only the author can change this post")
)
