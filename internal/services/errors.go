package services

import "errors"

// Caller-visible validation failures. Storage and provider faults are wrapped
// with %w instead and surface as a generic infrastructure error.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAccountInactive    = errors.New("account is not active")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionExpired     = errors.New("refresh session expired")
	ErrProviderConflict   = errors.New("email already registered with a different provider")
	ErrGoogleAuthFailed   = errors.New("google authentication failed")
)
