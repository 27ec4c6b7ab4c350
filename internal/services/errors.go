package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/notehub/internal/shared"
)

const (
	TooManyRequestsMessage = "Too many requests. Please wait a few seconds"
	GenericErrorMessage    = "Something went wrong."
)

// StatusError is a non-2xx backend response.
type StatusError struct {
	Status  int
	Message string // "message" field of the JSON body, if any
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

func newStatusError(status int, body []byte) *StatusError {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)
	return &StatusError{Status: status, Message: payload.Message}
}

// AuthError is the single typed error returned by API operations.
type AuthError struct {
	Code    int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap exposes [shared.ErrAPIRequest] and the underlying cause to [errors.Is].
func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{shared.ErrAPIRequest}
	}
	return []error{shared.ErrAPIRequest, e.Err}
}

// wrapError normalizes err into an [*AuthError].
//
// The code is the response status, or 500 when no response arrived. The message is the body's message, else fallback.
func wrapError(err error, fallback string) *AuthError {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}

	var se *StatusError
	if errors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = fallback
		}
		return &AuthError{Code: se.Status, Message: msg, Err: err}
	}
	return &AuthError{Code: http.StatusInternalServerError, Message: fallback, Err: err}
}

func invalidInput(err error) *AuthError {
	return &AuthError{
		Code:    http.StatusBadRequest,
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %v", shared.ErrInvalidInput, err),
	}
}

// hasStatus reports whether err carries the given backend status.
func hasStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// StatusCode returns the HTTP status carried by err, defaulting to 500.
func StatusCode(err error) int {
	var ae *AuthError
	if errors.As(err, &ae) && ae.Code != 0 {
		return ae.Code
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return http.StatusInternalServerError
}

// UserMessage maps err to the text shown to a user. 429 gets a dedicated message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if StatusCode(err) == http.StatusTooManyRequests {
		return TooManyRequestsMessage
	}
	var ae *AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericErrorMessage
}
