package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/internal/presentation/http/middleware"
)

// GetUserID returns the authenticated caller's id, or nil outside AuthMiddleware.
func GetUserID(c *gin.Context) *uuid.UUID {
	value, _ := c.Get(middleware.ContextUserID)
	userID, ok := value.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUsername returns the authenticated caller's username
func GetUsername(c *gin.Context) string {
	return c.GetString(middleware.ContextUsername)
}

// GetUserRoles returns the roles carried by the caller's access token
func GetUserRoles(c *gin.Context) []string {
	return c.GetStringSlice(middleware.ContextUserRoles)
}
