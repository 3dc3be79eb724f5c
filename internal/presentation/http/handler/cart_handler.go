package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/masterstock-api/internal/application/service"
	"github.com/sangkips/masterstock-api/internal/presentation/http/dto/request"
	"github.com/sangkips/masterstock-api/internal/presentation/http/dto/response"
)

// CartHandler exposes the authenticated cashier's cart
type CartHandler struct {
	salesService   *service.SalesService
	receiptService *service.ReceiptService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(salesService *service.SalesService, receiptService *service.ReceiptService) *CartHandler {
	return &CartHandler{salesService: salesService, receiptService: receiptService}
}

// Get returns the cart and its totals
func (h *CartHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	response.OK(c, "Cart retrieved successfully", h.salesService.GetCart(*userID))
}

// AddItem selects a product
func (h *CartHandler) AddItem(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cart, err := h.salesService.SelectProduct(c.Request.Context(), *userID, req.ProductID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product added to cart", cart)
}

// SetQuantity changes the quantity of a cart line
func (h *CartHandler) SetQuantity(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cart, err := h.salesService.SetQuantity(*userID, c.Param("product_id"), *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quantity updated", cart)
}

// RemoveItem drops a cart line
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	cart, err := h.salesService.RemoveItem(*userID, c.Param("product_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed from cart", cart)
}

// SetDiscount sets the discount amount
func (h *CartHandler) SetDiscount(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response.OK(c, "Discount updated", h.salesService.SetDiscount(*userID, req.Amount))
}

// SetPayment sets the payment received
func (h *CartHandler) SetPayment(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response.OK(c, "Payment updated", h.salesService.SetPaymentReceived(*userID, req.Amount))
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	response.OK(c, "Cart cleared", h.salesService.ClearCart(*userID))
}

// Checkout finalizes the cart into a sale and returns it with its receipt.
// A receipt that fails to render does not undo the sale; the sale is
// returned with a warning.
func (h *CartHandler) Checkout(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	ctx := c.Request.Context()
	sale, err := h.salesService.Checkout(ctx, *userID, GetUsername(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.receiptService.DisplaySale(ctx, sale)
	if err != nil {
		response.Created(c, "Sale recorded", gin.H{
			"sale":    sale,
			"warning": err.Error(),
		})
		return
	}

	response.Created(c, "Sale recorded", gin.H{
		"sale":    sale,
		"receipt": view,
	})
}
