package core

import "errors"

// Validation errors (client input)
var (
	ErrTermsNotAgreed        = errors.New("you must agree to the terms and conditions")   // 400
	ErrCollaboratorsRequired = errors.New("at least one collaborator is required")        // 400
	ErrSelfCollaborator      = errors.New("collaborator email matches the account email") // 400
	ErrInvalidInput          = errors.New("invalid request body")                         // 400
)

// Conflict errors (duplicate or cross-method collision)
var (
	ErrEmailTaken             = errors.New("a user with this email already exists")                                       // 400
	ErrCollaboratorEmailTaken = errors.New("a user with this collaborator email already exists")                          // 400
	ErrLocalAccountExists     = errors.New("this email is already registered with a password, please log in with email") // 400
)

// Authentication errors
var (
	// Covers wrong password, unknown email and OAuth-only accounts so the
	// response never reveals which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials or sign in with Google") // 401

	ErrInvalidToken    = errors.New("invalid token")                    // 401
	ErrTokenExpired    = errors.New("token expired")                    // 401
	ErrInvalidRefresh  = errors.New("invalid or expired refresh token") // 401
	ErrSessionNotFound = errors.New("session not found")                // 401
	ErrSessionExpired  = errors.New("session expired")                  // 401
	ErrMissingToken    = errors.New("no token provided")                // 401
)

// Authorization errors
var (
	ErrAdminOnly = errors.New("insufficient permissions") // 403
)

// Not-found errors
var (
	ErrUserNotFound    = errors.New("user not found")    // 404
	ErrOrderNotFound   = errors.New("order not found")   // 404
	ErrAddressNotFound = errors.New("address not found") // 404
)

// Config errors (server-side configuration)
var (
	ErrPriceNotConfigured   = errors.New("init fee price id is not configured") // 500
	ErrWebhookNotConfigured = errors.New("webhook secret is not configured")    // 500
)

// Security errors. Signature failures must reject the payload, never
// degrade to a warning.
var (
	ErrWebhookSignature = errors.New("webhook signature verification failed")
)

// Storage signals
var (
	// Returned when a webhook event id was already recorded, so a retried
	// delivery must not create a second order.
	ErrEventProcessed = errors.New("event already processed")
)
