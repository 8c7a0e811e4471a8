package domain

import "errors"

// Sentinel errors shared by the service and HTTP layers
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateUser      = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAlreadyVoted       = errors.New("voter has already cast a vote")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrNoPendingOTP       = errors.New("no verification in progress")
	ErrInvalidOTP         = errors.New("invalid verification code")
	ErrOTPExpired         = errors.New("verification code expired")
	ErrUnavailable        = errors.New("storage unavailable")
)

// ValidationError carries a message that can be shown to the user as is
type ValidationError struct {
	Message string
}

// NewValidationError builds a ValidationError
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func (e *ValidationError) Error() string { return e.Message }

// Unwrap lets errors.Is match ErrValidation
func (e *ValidationError) Unwrap() error { return ErrValidation }
