package domain

import "errors"

// Sentinel errors raised by services and repositories. The API error handler
// maps each to its HTTP status code; wrap with fmt.Errorf("...: %w", err) to
// attach detail without losing the mapping.
var (
	// 400
	ErrValidation      = errors.New("validation failed")
	ErrInvalidSort     = errors.New("invalid sort field")
	ErrClientAssigned  = errors.New("client is already assigned")
	ErrTaskAssigned    = errors.New("task is already assigned")

	// 401
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// 403
	ErrForbidden = errors.New("access denied")

	// 404
	ErrUserNotFound     = errors.New("user not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrDealNotFound     = errors.New("deal not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrNoDealsForClient = errors.New("no deals for this client")
	ErrNoTasksMatched   = errors.New("no tasks matched")

	// 409
	ErrUserExists   = errors.New("user already exists")
	ErrClientExists = errors.New("client already exists")
	ErrDealExists   = errors.New("deal already exists")
	ErrTaskExists   = errors.New("task already exists")

	// 500
	ErrInternal = errors.New("internal failure")
)
