package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/masterstock-api/internal/application/service"
	"github.com/sangkips/masterstock-api/internal/presentation/http/dto/response"
)

// PrinterHandler reports on and exercises the receipt printer
type PrinterHandler struct {
	printerService *service.PrinterService
}

func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the configured printer type, width and connection state
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.GetStatus())
}

// TestPrint prints a sample receipt. The sample comes back in the same shape
// as a sale print so clients can preview it when no printer is attached.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printerService.TestPrint()
	result := &service.PrintResult{Receipt: receipt, Printed: err == nil}
	if err != nil {
		result.Warning = err.Error()
		response.OK(c, "Sample receipt generated but printing failed", result)
		return
	}

	response.OK(c, "Sample receipt sent to printer", result)
}
