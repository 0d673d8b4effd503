package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized marks a 401 that survived the refresh-and-retry path.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials marks a rejected login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound marks a 404 from the backend.
	ErrNotFound = errors.New("not found")
)

// StatusError reports a non-2xx backend response. Detail carries the
// human-readable message extracted from the response body when present.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Detail) != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Is maps well-known statuses onto the package sentinels so callers can use
// errors.Is without inspecting codes.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

func newStatusError(status int, body []byte) *StatusError {
	return &StatusError{Status: status, Detail: extractDetail(body)}
}

// extractDetail pulls the "detail" field out of an error body. Non-JSON
// bodies fall back to trimmed raw text.
func extractDetail(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if strings.TrimSpace(payload.Detail) != "" {
			return strings.TrimSpace(payload.Detail)
		}
		if strings.TrimSpace(payload.Message) != "" {
			return strings.TrimSpace(payload.Message)
		}
	}
	const maxDetail = 512
	if len(trimmed) > maxDetail {
		trimmed = trimmed[:maxDetail]
	}
	return trimmed
}

// ErrorMessage returns the most useful human-readable text for err: the
// backend detail when present, otherwise the plain error message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) && strings.TrimSpace(statusErr.Detail) != "" {
		return statusErr.Detail
	}
	return err.Error()
}
