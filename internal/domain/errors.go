package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of where it came from
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindValidation
	KindCapacityExceeded
	KindConfiguration
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// AppError is a classified error with a message safe to show to API clients
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *AppError { return newError(KindNotFound, message, nil) }
func Conflict(message string) *AppError { return newError(KindConflict, message, nil) }
func Unauthorized(message string) *AppError { return newError(KindUnauthorized, message, nil) }
func Forbidden(message string) *AppError { return newError(KindForbidden, message, nil) }
func Validation(message string) *AppError { return newError(KindValidation, message, nil) }
func CapacityExceeded(message string) *AppError { return newError(KindCapacityExceeded, message, nil) }
func Configuration(message string) *AppError { return newError(KindConfiguration, message, nil) }

// Upstream marks a failure of an external collaborator
func Upstream(message string, err error) *AppError {
	return newError(KindUpstream, message, err)
}

// Internal marks an unexpected failure. The message is never shown to clients.
func Internal(message string, err error) *AppError {
	return newError(KindInternal, message, err)
}

// KindOf returns the kind of the first AppError in err's chain, KindInternal otherwise
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of err
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "Internal Server Error"
}

func IsNotFound(err error) bool { return err != nil && KindOf(err) == KindNotFound }
func IsConflict(err error) bool { return err != nil && KindOf(err) == KindConflict }
func IsUnauthorized(err error) bool { return err != nil && KindOf(err) == KindUnauthorized }
func IsForbidden(err error) bool { return err != nil && KindOf(err) == KindForbidden }
func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }
func IsCapacityExceeded(err error) bool { return err != nil && KindOf(err) == KindCapacityExceeded }
func IsConfiguration(err error) bool { return err != nil && KindOf(err) == KindConfiguration }
func IsUpstream(err error) bool { return err != nil && KindOf(err) == KindUpstream }

// Domain errors
var (
	// Event errors
	ErrEventNotFound      = NotFound("Event Not Found")
	ErrEventHasBookings   = Conflict("Cannot Delete Event, There Are Active Bookings Associate With It.")
	ErrInvalidEventStatus = Validation("Invalid event status")
	ErrInvalidImageType   = Validation("Only image files are allowed")
	ErrStripePriceMissing = Configuration("Stripe Price Configuration Missing for This Event")

	// Booking errors
	ErrBookingNotFound   = NotFound("Booking Not Found")
	ErrAlreadyRegistered = Conflict("You Are Already Registered for This Event")
	ErrSoldOut           = CapacityExceeded("The Event Ticket is Sold Out")
	ErrInvalidSignature  = Validation("Invalid Signature")
	ErrInvalidPayload    = Validation("Invalid Payload")
	ErrNotEventOrganizer = Forbidden("You Are Not Authorized to View Participants of This Event")

	// Category errors
	ErrCategoryNotFound  = NotFound("Category Not Found")
	ErrNoCategoriesFound = NotFound("No Categories Found")

	// Profile errors
	ErrProfileNotFound     = NotFound("Profile Not Found")
	ErrProfileUpdateFailed = NotFound("Failed to Update")
	ErrUserNotFound        = NotFound("User Not Found")
	ErrNoProfileFields     = Validation("No Fields to Update")

	// Auth errors
	ErrEmailRegistered     = Conflict("Email is Already Been Registered")
	ErrInvalidCredentials  = Unauthorized("Invalid email or password")
	ErrEmailNotConfirmed   = Forbidden("Please confirm your email before logging in")
	ErrRefreshFailed       = Unauthorized("Token Refresh Failed. Please Login Again")
	ErrInvalidToken        = Unauthorized("Could not validate credentials")
	ErrPasswordMismatch    = Validation("Password Do Not Match")
	ErrUnsupportedProvider = Validation("Unsupported OAuth provider")
	ErrInvalidAuthCode     = Unauthorized("Invalid or expired code")
)
