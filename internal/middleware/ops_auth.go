package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "carteira/internal/errors"
)

var (
	errOpsNotConfigured = &apperrors.AppError{Code: "OPS_NOT_CONFIGURED", Message: "Operations endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
	errInvalidAPIKey    = &apperrors.AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// OpsKeyMiddleware guards the whole-ledger maintenance endpoints with the
// X-API-Key header. An empty key disables them.
func OpsKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWith(c, errOpsNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWith(c, errInvalidAPIKey)
			return
		}
		c.Next()
	}
}
