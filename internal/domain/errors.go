package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the error kinds named by the error handling design: a
// stable, language-neutral string code distinct from the Go error message.
type Kind string

const (
	KindNotFound                Kind = "NOT_FOUND"
	KindForbidden                Kind = "FORBIDDEN"
	KindValidationError          Kind = "VALIDATION_ERROR"
	KindInvalidStatusTransition  Kind = "INVALID_STATUS_TRANSITION"
	KindInsufficientStock        Kind = "INSUFFICIENT_STOCK"
	KindInvalidProvider          Kind = "INVALID_PROVIDER"
	KindProviderNotConfigured    Kind = "PROVIDER_NOT_CONFIGURED"
	KindProviderError            Kind = "PROVIDER_ERROR"
	KindInvalidSignature         Kind = "INVALID_SIGNATURE"
	KindMissingTracking          Kind = "MISSING_TRACKING"
	KindNoShipperAvailable       Kind = "NO_SHIPPER_AVAILABLE"
	KindAlreadyAssigned          Kind = "ALREADY_ASSIGNED"
	KindConflictError            Kind = "CONFLICT_ERROR"
	KindRateLimited              Kind = "RATE_LIMITED"
	KindInternal                 Kind = "INTERNAL"
)

// Error is the application-wide error shape. A handler maps it to
// {error:{code,message}, status}; code is the Kind, stable and language
// neutral, message is the default (localized) human text for the kind.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is lets errors.Is(err, domain.ErrNotFound) match any *Error with the same Kind,
// including ones built with a different (localized) Message via WithMessage.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == t.Kind
}

// WithMessage returns a copy of the sentinel with a caller-supplied message,
// e.g. a localized string for the customer/shipper surface.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Kind: e.Kind, Status: e.Status, Message: msg}
}

// The 15 named error kinds of the error handling design, each with its
// default HTTP status and English message (admin surface; customer/shipper
// surfaces localize via WithMessage).
var (
	ErrNotFound               = &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: "resource not found"}
	ErrForbidden              = &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: "actor does not own this resource"}
	ErrValidation             = &Error{Kind: KindValidationError, Status: http.StatusBadRequest, Message: "validation error"}
	ErrInvalidStatusTransition = &Error{Kind: KindInvalidStatusTransition, Status: http.StatusConflict, Message: "invalid status transition"}
	ErrInsufficientStock      = &Error{Kind: KindInsufficientStock, Status: http.StatusConflict, Message: "insufficient stock"}
	ErrInvalidProvider        = &Error{Kind: KindInvalidProvider, Status: http.StatusBadRequest, Message: "unknown shipping provider code"}
	ErrProviderNotConfigured  = &Error{Kind: KindProviderNotConfigured, Status: http.StatusUnprocessableEntity, Message: "shipping provider not configured for this shop"}
	ErrProviderError          = &Error{Kind: KindProviderError, Status: http.StatusBadGateway, Message: "shipping provider error"}
	ErrInvalidSignature       = &Error{Kind: KindInvalidSignature, Status: http.StatusUnauthorized, Message: "invalid webhook signature"}
	ErrMissingTracking        = &Error{Kind: KindMissingTracking, Status: http.StatusBadGateway, Message: "provider returned no tracking number"}
	ErrNoShipperAvailable     = &Error{Kind: KindNoShipperAvailable, Status: http.StatusConflict, Message: "no shipper available"}
	ErrAlreadyAssigned        = &Error{Kind: KindAlreadyAssigned, Status: http.StatusConflict, Message: "shipment already assigned"}
	ErrConflict               = &Error{Kind: KindConflictError, Status: http.StatusConflict, Message: "conflict"}
	ErrRateLimited            = &Error{Kind: KindRateLimited, Status: http.StatusTooManyRequests, Message: "rate limited"}
	ErrInternal               = &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "internal error"}

	// ErrVersionConflict is the repository-level optimistic-lock conflict;
	// usecases surface it to callers as ErrConflict.
	ErrVersionConflict = errors.New("optimistic lock: version conflict")
	// ErrUnavailable wraps infrastructure failures (db, network, timeout).
	ErrUnavailable = errors.New("unavailable")
)

// Wrap attaches op and cause to a sentinel *Error for diagnostics while
// keeping errors.Is(result, sentinel) true.
func Wrap(sentinel *Error, op string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", sentinel, op)
	}

	return fmt.Errorf("%w: %s: %w", sentinel, op, cause)
}

// WrapUnavailable wraps an infrastructure error as ErrUnavailable, preserving the cause for Unwrap.
func WrapUnavailable(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// WrapValidation wraps a validation/domain error as ErrValidation, preserving the cause for Unwrap.
func WrapValidation(op string, err error) error {
	if err == nil {
		return nil
	}

	return Wrap(ErrValidation, op, err)
}

// MapInfraErr returns err as-is if it is already a known domain error,
// otherwise wraps it as ErrUnavailable with op for usecase-layer mapping of
// infrastructure failures (e.g. repository -> usecase boundary).
func MapInfraErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var de *Error
	if errors.As(err, &de) {
		return err
	}

	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrVersionConflict) ||
		errors.Is(err, ErrUnavailable) {
		return err
	}

	return WrapUnavailable(op, err)
}

// KindOf extracts the Kind of err, or KindInternal if err is not a *Error
// (and not one of the legacy sentinels below).
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}

	switch {
	case errors.Is(err, ErrVersionConflict):
		return KindConflictError
	case errors.Is(err, ErrUnavailable):
		return KindInternal
	default:
		return KindInternal
	}
}
