package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/masterstock-api/internal/presentation/http/dto/response"
	"github.com/sangkips/masterstock-api/pkg/utils"
)

// Keys under which AuthMiddleware stores the caller identity.
const (
	ContextUserID    = "user_id"
	ContextUsername  = "username"
	ContextUserRoles = "user_roles"
)

// AuthMiddleware requires a valid bearer access token and stores the
// caller's id, username and roles on the context.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "Authorization header must be \"Bearer <token>\"")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextUserRoles, claims.Roles)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireRole lets the request through when the caller holds any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles := c.GetStringSlice(ContextUserRoles)
		if len(userRoles) == 0 {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		if slices.ContainsFunc(userRoles, func(r string) bool { return slices.Contains(roles, r) }) {
			c.Next()
			return
		}

		response.Forbidden(c, "Insufficient role privileges")
		c.Abort()
	}
}
