package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookverse/bookverse/pkg/logging"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

// RequestID assigns every request an id, reusing the caller's if present
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs each request once it completes
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.WithRequestID(c.GetString(requestIDKey)).Info("Request",
			zap.String("component", "gateway"),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Recovery turns a handler panic into a 500 instead of a dropped
// connection.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestLogger(c, logging.WithComponent("gateway")).Error("Handler panic", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			gin.H{"error": NewError(http.StatusInternalServerError, "internal error")})
	})
}

func requestLogger(c *gin.Context, base *zap.Logger) *zap.Logger {
	if id := c.GetString(requestIDKey); id != "" {
		return base.With(zap.String("request_id", id))
	}
	return base
}
