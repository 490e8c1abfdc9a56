package utils

import "time"

// Application constants
const (
	AppName    = "ReliefNet"
	AppVersion = "1.0.0"

	// Authentication
	JWTTokenTTL       = 24 * time.Hour
	PasswordMinLength = 8

	// Chat
	MaxMessageLength = 1000

	// Response status strings
	StatusSuccess = "success"
	StatusError   = "error"

	// Common error messages
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized"
	ErrForbidden        = "Forbidden"
)
