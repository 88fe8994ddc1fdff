package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"agenda/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set once a request is authorized.
const (
	ContextClaims = "sessionClaims"
	ContextToken  = "sessionToken"
)

var errMissingToken = errors.New("missing or invalid Authorization header")

// Authorizer validates a PIN session token. setup.SetupService satisfies it.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*utils.SessionClaims, error)
}

// BearerToken reads "Authorization: Bearer <token>". Browsers cannot set
// headers on a websocket handshake, so a GET may carry ?token= instead.
func BearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")); token != "" {
			return token, nil
		}
	}
	if c.Request.Method == http.MethodGet {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
	}
	return "", errMissingToken
}

func authorize(c *gin.Context, auth Authorizer, role string) (*utils.SessionClaims, bool) {
	token, err := BearerToken(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return nil, false
	}

	claims, err := auth.Authorize(c.Request.Context(), token)
	if err != nil {
		utils.GetLogger().Warn("Session rejected", zap.String("ip", ClientIP(c)), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
		return nil, false
	}
	if claims.Role != role {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return nil, false
	}

	c.Set(ContextClaims, claims)
	c.Set(ContextToken, token)
	return claims, true
}

// RequireAdmin admits a professional's admin session for the :id in the path.
func RequireAdmin(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authorize(c, auth, utils.RoleAdmin)
		if !ok {
			return
		}
		if claims.Subject != c.Param("id") {
			utils.GetLogger().Warn("Admin session used for another professional",
				zap.String("subject", claims.Subject),
				zap.String("professionalID", c.Param("id")),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Session does not belong to this professional"})
			return
		}
		c.Next()
	}
}

// RequireMaster admits the setup screen's session.
func RequireMaster(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authorize(c, auth, utils.RoleMaster); !ok {
			return
		}
		c.Next()
	}
}

// SessionToken returns the token stored by RequireAdmin or RequireMaster.
func SessionToken(c *gin.Context) string {
	return c.GetString(ContextToken)
}
