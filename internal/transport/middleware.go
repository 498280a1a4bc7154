package transport

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/the-steelix-flame/lexi-simplifai/internal/models"
	"github.com/the-steelix-flame/lexi-simplifai/internal/services"
)

const uidContextKey = "uid"

// RequireAuth verifies the Authorization bearer token and stores the caller's
// uid in the request context. Requests without a valid token are rejected
// before any data access happens.
func RequireAuth(verifier services.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorization := c.GetHeader("Authorization")
		if !strings.HasPrefix(authorization, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			return
		}

		idToken := strings.TrimPrefix(authorization, "Bearer ")
		uid, err := verifier.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			slog.Warn("Rejected request with invalid ID token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			return
		}

		c.Set(uidContextKey, uid)
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
