package types

import (
	"errors"
	"net/http"
)

// ErrorKind classifies an error for the transport layer.
type ErrorKind int

const (
	KindService ErrorKind = iota
	KindValidation
	KindAuthentication
	KindForbidden
	KindNotFound
	KindDatabase
)

// HTTPStatus maps the kind to its response code.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error. Message is safe to show to clients, Err is not.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func NewNotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func NewForbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }

// NewService wraps a failed collaborator call.
func NewService(msg string, err error) *Error {
	return &Error{Kind: KindService, Message: msg, Err: err}
}

// NewDatabase wraps a failed store call.
func NewDatabase(err error) *Error {
	return &Error{Kind: KindDatabase, Message: "database error", Err: err}
}

// KindOf returns the kind of the first *Error in the chain, KindService otherwise.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindService
}

// PublicMessage returns the client facing message of err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal server error"
}

var (
	ErrTrackingNotFound     = NewNotFound("tracking not found")
	ErrDriverNotTracked     = NewNotFound("driver has no active tracking")
	ErrRequestNotFound      = NewNotFound("request not found")
	ErrRaceNotFound         = NewNotFound("race not found")
	ErrUserNotFound         = NewNotFound("user not found")
	ErrVehicleClassNotFound = NewNotFound("vehicle class not found")
	ErrPeakConfigNotFound   = NewNotFound("peak hour config not found")
	ErrObjectNotFound       = NewNotFound("file not found")

	ErrInvalidTransition   = NewValidation("request status does not allow this action")
	ErrDuplicateRequest    = NewValidation("request already exists")
	ErrMissingRaceOrigin   = NewValidation("race has no origin coordinates")
	ErrInvalidCoordinates  = NewValidation("latitude must be between -90 and 90 and longitude between -180 and 180")
	ErrMissingConfigFields = NewValidation("country, province, municipality, startTime, endTime, pricePerHour and status are required")
	ErrInvalidFare         = NewValidation("fare must be positive and commission rate between 0 and 100")
	ErrDriverMismatch      = NewForbidden("driver is not assigned to this request")

	ErrUnauthorized = &Error{Kind: KindAuthentication, Message: "authorization required"}
	ErrForbidden    = NewForbidden("forbidden: insufficient role")

	ErrRouteUnavailable = &Error{Kind: KindService, Message: "failed to compute route"}
	ErrFeatureDisabled  = &Error{Kind: KindService, Message: "feature is not configured"}

	// ErrWalletUnavailable marks a transient wallet failure worth retrying.
	ErrWalletUnavailable = &Error{Kind: KindService, Message: "wallet service unavailable"}
	ErrWalletRejected    = &Error{Kind: KindService, Message: "wallet rejected the debit"}
)
