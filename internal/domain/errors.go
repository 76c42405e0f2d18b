package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrTransport         = errors.New("upstream unreachable")
	ErrEmptyResponse     = errors.New("upstream returned no data")
	ErrValidation        = errors.New("invalid input")
	ErrSessionExpired    = errors.New("checkout session expired")
	ErrInvalidSession    = errors.New("checkout session data invalid")
	ErrInvalidStage      = errors.New("checkout stage does not allow this action")
	ErrBookingInProgress = errors.New("booking already in progress")
)

// UpstreamError is a structured business error from the booking API
// (rate expired, booking rejected, ...).
type UpstreamError struct {
	Status      int    `json:"-"`
	Code        string `json:"code,omitempty"`
	Message     string `json:"message,omitempty"`
	Description string `json:"description,omitempty"`
}

func (e *UpstreamError) Error() string {
	msg := e.Description
	if msg == "" {
		msg = e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("upstream %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("upstream %d: %s", e.Status, msg)
}

// Validation wraps ErrValidation with a user-facing reason.
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
