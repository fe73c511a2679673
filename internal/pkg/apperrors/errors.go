package apperrors

import "errors"

// Error kinds. HTTP status mapping is done against these, so every
// domain error below wraps exactly one of them.
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	ErrRateLimited = errors.New("too many requests")
)

// User errors
var (
	ErrUserNotFound       = NewResourceNotFoundError("user not found")
	ErrProfileNotFound    = NewResourceNotFoundError("profile not found")
	ErrEmailAlreadyExists = &CustomError{Err: ErrResourceAlreadyExists, Message: "email already exists"}
	ErrInvalidEmail       = NewValidationError("invalid email")
	ErrWeakPassword       = NewValidationError("password must be at least 8 characters and contain a letter and a digit")
	ErrRoleNotAllowed     = NewValidationError("role must be student or alumni")
	ErrNotProfileOwner    = NewForbiddenError("you can only modify your own profile")
	ErrSelfDeactivation   = NewValidationError("administrators cannot change their own account status")
	ErrInvalidCSV         = NewValidationError("invalid CSV file")
	ErrAdminRequired      = NewForbiddenError("administrator role required")
)

// Connection errors
var (
	ErrConnectionNotFound      = NewResourceNotFoundError("connection not found")
	ErrConnectionExists        = NewConflictError("a connection between these users already exists")
	ErrConnectionNotPending    = NewConflictError("connection request is no longer pending")
	ErrConnectionSelf          = NewValidationError("cannot connect with yourself")
	ErrNotConnectionReceiver   = NewForbiddenError("only the receiver can respond to a connection request")
	ErrNotConnectionMember     = NewForbiddenError("not a party to this connection")
	ErrInvalidConnectionState  = NewValidationError("status must be accepted or rejected")
	ErrConnectionStatusChanged = NewConflictError("connection status changed concurrently")
	ErrConnectionNotAccepted   = NewConflictError("only accepted connections can be removed")
)

// Message errors
var (
	ErrMessageSelf          = NewValidationError("cannot send a message to yourself")
	ErrMessageEmpty         = NewValidationError("message content must be between 1 and 5000 characters")
	ErrMessagingBlocked     = NewForbiddenError("messaging between these users is blocked")
	ErrConnectionRequired   = NewForbiddenError("an accepted connection is required to send messages")
	ErrMessageStatusInvalid = NewValidationError("message status can only move forward")
)

// Job errors
var (
	ErrJobNotFound       = NewResourceNotFoundError("job not found")
	ErrJobClosed         = NewConflictError("job is closed")
	ErrAlreadyApplied    = NewConflictError("already applied")
	ErrApplyOwnJob       = NewValidationError("cannot apply to your own job posting")
	ErrJobPostingDenied  = NewForbiddenError("only alumni and admins can post jobs")
	ErrNotJobOwner       = NewForbiddenError("only the poster or an admin can modify this job")
	ErrApplicationDenied = NewForbiddenError("only students and alumni can apply to jobs")
)

// Startup errors
var (
	ErrStartupNotFound      = NewResourceNotFoundError("startup not found")
	ErrStartupAlreadyExists = NewConflictError("user already owns a startup")
	ErrNotStartupOwner      = NewForbiddenError("only the founder or an admin can modify this startup")
	ErrStartupNotPending    = NewConflictError("startup has already been reviewed")
)

// Donation errors
var (
	ErrInvalidDonationAmount = NewValidationError("donation amount must be positive")
)

// Event errors
var (
	ErrEventNotFound       = NewResourceNotFoundError("event not found")
	ErrEventFull           = NewConflictError("event is at capacity")
	ErrAlreadyRegistered   = NewConflictError("already registered for this event")
	ErrNotRegistered       = NewResourceNotFoundError("not registered for this event")
	ErrNotEventOrganizer   = NewForbiddenError("only the organizer or an admin can modify this event")
	ErrEventCreationDenied = NewForbiddenError("only alumni and admins can create events")
	ErrEventEnded          = NewConflictError("event has already ended")
	ErrCapacityTooSmall    = NewConflictError("capacity is below the number of registrations")
)

// Analytics errors
var (
	ErrInvalidDateRange = NewValidationError("from must not be after to")
)

// File errors
var (
	ErrFileTooLarge        = NewValidationError("file exceeds maximum size")
	ErrUnsupportedFileType = NewValidationError("unsupported file type")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) *CustomError {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) *CustomError {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) *CustomError {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) *CustomError {
	return &CustomError{Err: ErrBadRequest, Message: message}
}

// NewValidationError creates a new custom error for failed input validation
func NewValidationError(message string) *CustomError {
	return &CustomError{Err: ErrValidationFailed, Message: message}
}

// NewUnauthenticatedError creates a new custom error for a missing or unusable session
func NewUnauthenticatedError(message string) *CustomError {
	return &CustomError{Err: ErrUnauthenticated, Message: message}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error carrying context details.
// Package-level errors are shared, so they are never mutated in place.
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	clone := *e
	clone.Details = details
	return &clone
}
