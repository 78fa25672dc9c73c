package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError is a non-2xx response from the BookVerse API
type APIError struct {
	Status  int
	Message string
	// Field names the request field a validation failure refers to, when
	// the response identifies one.
	Field  string
	Fields map[string][]string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("API error %d: %s: %s", e.Status, e.Field, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// errorBody covers the error envelopes the API is known to send
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Title   string              `json:"title"`
	Detail  string              `json:"detail"`
	Field   string              `json:"field"`
	Errors  map[string][]string `json:"errors"`
}

func newAPIError(status int, body errorBody) *APIError {
	e := &APIError{Status: status, Field: body.Field}
	for _, msg := range []string{body.Message, body.Error, body.Detail, body.Title} {
		if strings.TrimSpace(msg) != "" {
			e.Message = msg
			break
		}
	}
	if len(body.Errors) > 0 {
		e.Fields = body.Errors
		if e.Field == "" {
			keys := make([]string, 0, len(body.Errors))
			for k := range body.Errors {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			e.Field = keys[0]
			if msgs := body.Errors[e.Field]; len(msgs) > 0 && e.Message == "" {
				e.Message = msgs[0]
			}
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// StatusOf returns the HTTP status of an API error, or 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports a 404. On optional endpoints this means the feature
// is unavailable rather than that something failed.
func IsNotFound(err error) bool {
	return StatusOf(err) == http.StatusNotFound
}

// IsConflict reports a 409, e.g. a duplicate review
func IsConflict(err error) bool {
	return StatusOf(err) == http.StatusConflict
}

// IsValidation reports a 4xx other than 404/409
func IsValidation(err error) bool {
	status := StatusOf(err)
	return status >= 400 && status < 500 && status != http.StatusNotFound && status != http.StatusConflict
}

// FieldError returns the offending field and its message for validation
// failures that name one.
func FieldError(err error) (field, message string, ok bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Field == "" {
		return "", "", false
	}
	return apiErr.Field, apiErr.Message, true
}

// UserMessage renders err as text suitable for inline status display
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "Network error, please try again."
	}
	switch {
	case apiErr.Status == http.StatusConflict:
		return "This item already exists."
	case apiErr.Status == http.StatusNotFound:
		return "This feature is not available yet."
	case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
		return "You are not allowed to do that."
	case apiErr.Status >= 500:
		return "The server could not complete the request."
	default:
		return apiErr.Message
	}
}
