package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"stream-service/pkg/token"
)

const identityKey = "identity"

// Auth resolves the bearer credential to an identity before any handler
// runs. Absence or invalidity is a hard failure; the observed contract
// serializes every failure as 400 with {error: message}, not 401.
func Auth(signer *token.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no authorization header"})
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		userID, err := signer.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unauthorized"})
			return
		}

		identity, err := uuid.Parse(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// Identity returns the authenticated identity stored by Auth.
func Identity(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return uuid.Nil, false
	}
	identity, ok := val.(uuid.UUID)
	return identity, ok
}
