package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/masterstock-api/internal/application/service"
	"github.com/sangkips/masterstock-api/internal/presentation/http/dto/response"
)

// SystemHandler handles store-wide administrative actions
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{systemService: systemService}
}

// Reset deletes every product and sale
func (h *SystemHandler) Reset(c *gin.Context) {
	if err := h.systemService.Reset(c.Request.Context(), GetUsername(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "System reset complete", nil)
}
