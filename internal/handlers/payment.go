package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// Checkout opens a gateway order for the frontend checkout widget.
func (h HandlerSet) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.payment.Checkout(c.Request.Context(), req.Amount)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// VerifyPayment checks the gateway callback signature and records the
// payment on success.
func (h HandlerSet) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.payment.VerifyPayment(c.Request.Context(), req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference": req.RazorpayPaymentID})
}

func (h HandlerSet) PaymentKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"key": h.payment.Key()})
}
