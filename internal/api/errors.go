package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bookverse/bookverse/internal/apiclient"
	"github.com/bookverse/bookverse/internal/feed"
	"github.com/bookverse/bookverse/internal/shelves"
)

// Error is the JSON error body returned by the gateway
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Step    string `json:"step,omitempty"`
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// toError maps a service error onto the gateway's status codes. Upstream
// 404 and 409 pass through, other upstream 4xx become 422, and anything
// else is reported as a bad gateway.
func toError(err error) *Error {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr
	}

	out := &Error{Code: http.StatusBadGateway, Message: apiclient.UserMessage(err)}

	var moveErr *shelves.MoveError
	if errors.As(err, &moveErr) {
		out.Step = moveErr.Step
	}

	switch {
	case errors.Is(err, feed.ErrPostNotFound), errors.Is(err, feed.ErrCommentNotFound),
		errors.Is(err, shelves.ErrShelfNotFound):
		out.Code = http.StatusNotFound
		out.Message = err.Error()
	case apiclient.IsNotFound(err):
		out.Code = http.StatusNotFound
	case apiclient.IsConflict(err):
		out.Code = http.StatusConflict
	case apiclient.IsValidation(err):
		out.Code = http.StatusUnprocessableEntity
		if field, msg, ok := apiclient.FieldError(err); ok {
			out.Field = field
			out.Message = msg
		}
	}
	return out
}

// respondError writes err as a JSON error response
func (r *Router) respondError(c *gin.Context, err error) {
	apiErr := toError(err)
	logger := requestLogger(c, r.logger)
	if apiErr.Code >= http.StatusInternalServerError {
		logger.Warn("Request failed", zap.Int("status", apiErr.Code), zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.Int("status", apiErr.Code), zap.Error(err))
	}
	c.AbortWithStatusJSON(apiErr.Code, gin.H{"error": apiErr})
}

func badRequest(message string) *Error {
	return NewError(http.StatusBadRequest, message)
}
