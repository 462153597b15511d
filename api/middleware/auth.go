package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/segubroker/cotizador/models"
)

// identityKey is the context key under which the authenticated API key is
// stored for downstream middleware (the rate limiter keys its buckets on it).
const identityKey = "api_key"

// Auth returns API-key authentication middleware. Keys are accepted from
// either the X-API-Key header or an Authorization: Bearer token. An empty
// key list disables authentication entirely.
func Auth(apiKeys []string) gin.HandlerFunc {
	if len(apiKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	allowed := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			allowed[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		key := apiKeyFrom(c)
		if key == "" {
			reject(c, "API key required: send X-API-Key or Authorization: Bearer <key>")
			return
		}
		if _, ok := allowed[key]; !ok {
			reject(c, "API key not recognised")
			return
		}

		c.Set(identityKey, key)
		c.Next()
	}
}

func reject(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.QuoteResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeUnauthorized,
			Message: msg,
		},
	})
}

// apiKeyFrom reads the key from X-API-Key first, then a Bearer token.
func apiKeyFrom(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
