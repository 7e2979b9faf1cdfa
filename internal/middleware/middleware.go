package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"weekly-scheduler/pkg/response"
)

const (
	APIKeyHeader    = "X-API-Key"
	RequestIDHeader = "X-Request-ID"
)

// Auth accepts the key in X-API-Key or as a bearer token.
func (m Middleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.apiKey == "" {
			c.Next()
			return
		}
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			response.Unauthorized(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Recovery answers a panic with a 500 and logs it.
func (m Middleware) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err := fmt.Errorf("panic: %v", recovered)
		m.l.Errorf(c.Request.Context(), "http %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		response.InternalError(c, err)
		c.Abort()
	})
}

// RequestLog tags each request with an ID and logs its outcome.
func (m Middleware) RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		latency := time.Since(start).Round(time.Microsecond)
		if status >= http.StatusInternalServerError {
			m.l.Errorf(ctx, "http %s %s %d %s request_id=%s", c.Request.Method, c.FullPath(), status, latency, id)
			return
		}
		m.l.Debugf(ctx, "http %s %s %d %s request_id=%s", c.Request.Method, c.FullPath(), status, latency, id)
	}
}
