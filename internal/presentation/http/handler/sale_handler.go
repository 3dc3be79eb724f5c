package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/masterstock-api/internal/application/service"
	"github.com/sangkips/masterstock-api/internal/presentation/http/dto/response"
	"github.com/sangkips/masterstock-api/pkg/pagination"
)

// SaleHandler exposes the sale ledger and receipt renditions
type SaleHandler struct {
	salesService   *service.SalesService
	receiptService *service.ReceiptService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(salesService *service.SalesService, receiptService *service.ReceiptService) *SaleHandler {
	return &SaleHandler{salesService: salesService, receiptService: receiptService}
}

// List returns one page of recorded sales
func (h *SaleHandler) List(c *gin.Context) {
	params := pagination.DefaultPagination()
	if err := c.ShouldBindQuery(params); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}

	result, err := h.salesService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", result)
}

// Get returns a recorded sale
func (h *SaleHandler) Get(c *gin.Context) {
	sale, err := h.salesService.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// Receipt returns the display rendition
func (h *SaleHandler) Receipt(c *gin.Context) {
	view, err := h.receiptService.Display(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt generated", view)
}

// Print sends the receipt to the printer
func (h *SaleHandler) Print(c *gin.Context) {
	result, err := h.receiptService.Print(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if !result.Printed {
		response.OK(c, "Receipt generated but printing failed", result)
		return
	}
	response.OK(c, "Receipt printed successfully", result)
}

// Download returns the PDF rendition as an attachment
func (h *SaleHandler) Download(c *gin.Context) {
	file, err := h.receiptService.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, file.Name, file.ContentType, file.Content)
}
