package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"serrano/api/internal/apperr"
	"serrano/api/internal/ids"
	"serrano/api/internal/models"
)

type orderResponse struct {
	ID         string            `json:"id"`
	Cart       []models.CartItem `json:"cart"`
	TotalPrice int64             `json:"totalPrice"`
	AddressID  *string           `json:"addressId"`
	Status     string            `json:"status"`
	PaidAt     *time.Time        `json:"paidAt"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func toOrderResponse(order models.Order) orderResponse {
	return orderResponse{
		ID:         order.ID,
		Cart:       order.Cart,
		TotalPrice: order.TotalPrice,
		AddressID:  order.AddressID,
		Status:     string(order.Status),
		PaidAt:     order.PaidAt,
		CreatedAt:  order.CreatedAt,
	}
}

func toOrderResponses(orders []models.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	return resp
}

type createOrderRequest struct {
	Cart       []models.CartItem `json:"cart" binding:"required,min=1"`
	TotalPrice int64             `json:"totalPrice" binding:"required"`
	AddressID  *string           `json:"addressId"`
}

func (h HandlerSet) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TotalPrice <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totalPrice must be positive"})
		return
	}

	user := currentUser(c)
	order := models.Order{
		ID:         ids.New(),
		UserID:     user.ID,
		Cart:       req.Cart,
		TotalPrice: req.TotalPrice,
		AddressID:  req.AddressID,
		Status:     models.OrderStatusProcessing,
	}
	if err := h.orders.Create(c.Request.Context(), order); err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "create order", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": toOrderResponse(order)})
}

func (h HandlerSet) MyOrders(c *gin.Context) {
	user := currentUser(c)
	orders, err := h.orders.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, apperr.Wrap(apperr.KindInternal, "list orders", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(orders)})
}
