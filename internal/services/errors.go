package services

import "errors"

var (
	ErrNotFound           = errors.New("deployment not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("only the requester or a superadmin can change production readiness")
	ErrInvalidTransition  = errors.New("production readiness can only change once the deployment is completed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoActiveSession    = errors.New("no active session")
)

// ValidationError reports bad or missing input. Message is shown to clients as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingName        = &ValidationError{Message: "Release name is required"}
	ErrMissingDescription = &ValidationError{Message: "Description is required"}
	ErrBadReleaseFormat   = &ValidationError{Message: "Release name must be in YYYY-MM format"}
	ErrDuplicateRelease   = &ValidationError{Message: "Release with this name already exists"}
)
