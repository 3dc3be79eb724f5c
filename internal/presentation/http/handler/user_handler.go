package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/masterstock-api/internal/application/service"
	"github.com/sangkips/masterstock-api/internal/presentation/http/dto/request"
	"github.com/sangkips/masterstock-api/internal/presentation/http/dto/response"
)

// UserHandler handles user administration
type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// List returns every user
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Users retrieved successfully", users)
}

// Create adds a user account
func (h *UserHandler) Create(c *gin.Context) {
	var req request.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.AddUser(c.Request.Context(), &service.AddUserInput{
		Username:     req.Username,
		Password:     req.Password,
		IsSuperAdmin: req.IsSuperAdmin,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "User added successfully", user)
}

// Delete removes a user account
func (h *UserHandler) Delete(c *gin.Context) {
	actorID := GetUserID(c)
	if actorID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), *actorID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ResetSuperAdminPassword replaces the password of every super admin
func (h *UserHandler) ResetSuperAdminPassword(c *gin.Context) {
	var req request.ResetSuperAdminPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.authService.ResetSuperAdminPassword(c.Request.Context(), req.NewPassword, req.ConfirmPassword)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Super admin password reset", gin.H{"updated": updated})
}
