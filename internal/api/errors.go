package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrAuthentication = errors.New("authentication failed")
	ErrValidation     = errors.New("invalid input")
	ErrConflict       = errors.New("state changed on the server")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("not allowed")
	ErrNetwork        = errors.New("prediction service unreachable")
	ErrServer         = errors.New("prediction service error")
)

// Error is a non-2xx answer from the prediction API.
type Error struct {
	StatusCode int
	Detail     string
	kind       error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (status %d)", e.kind, e.StatusCode)
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Reclassify returns a copy of e that matches kind instead of its original class.
func (e *Error) Reclassify(kind error) *Error {
	return &Error{StatusCode: e.StatusCode, Detail: e.Detail, kind: kind}
}

// NewError builds the error the client returns for a status and detail.
func NewError(status int, detail string) *Error {
	return &Error{StatusCode: status, Detail: detail, kind: classify(status)}
}

func newError(status int, body []byte) *Error {
	return NewError(status, parseDetail(body))
}

func classify(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrServer
	}
}

// parseDetail understands {"detail": "..."} and the list form used for field
// validation errors: {"detail": [{"msg": "..."}]}.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// Message returns a sentence fit for showing to a user.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	switch {
	case errors.Is(err, ErrAuthentication):
		return "Your session has expired, please log in again"
	case errors.Is(err, ErrConflict):
		return "The match has already started"
	case errors.Is(err, ErrNetwork):
		return "Server unreachable, try again later"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		return "Not available yet"
	case errors.Is(err, ErrValidation):
		return "Invalid input"
	default:
		return "Server error"
	}
}
