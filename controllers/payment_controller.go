package controllers

import (
	"errors"
	"io"
	"strconv"

	"github.com/Mwangi-K/ElimuStore/models"
	"github.com/Mwangi-K/ElimuStore/mpesa"
	"github.com/Mwangi-K/ElimuStore/payments"
	"github.com/Mwangi-K/ElimuStore/utils"
	"github.com/gin-gonic/gin"
)

// PaymentController exposes the M-Pesa payment flow over HTTP. The payment
// service is injected so the handlers carry no ambient state of their own.
type PaymentController struct {
	Payments *payments.Service
}

// NewPaymentController wires a controller around the payment service
func NewPaymentController(svc *payments.Service) *PaymentController {
	return &PaymentController{Payments: svc}
}

// POST /v1/orders/:id/payment/mpesa
func (pc *PaymentController) InitiateMpesaPayment(c *gin.Context) {
	utils.LogInfo("InitiateMpesaPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.LogError("Invalid order ID in payment initiation: %v", err)
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid initiation request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request. phone is required", err.Error())
		return
	}

	// Ownership check before handing off to the service
	order, err := getOwnedOrder(uint(orderID), user.ID)
	if err != nil {
		utils.LogError("Order not found for ID: %d, user ID: %d", orderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}
	utils.LogInfo("Initiating M-Pesa payment for order %s, user ID: %d", order.OrderNumber, user.ID)

	checkoutRequestID, err := pc.Payments.InitiatePayment(c.Request.Context(), order.ID, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrValidation):
			utils.LogError("Validation failed for order %s: %v", order.OrderNumber, err)
			utils.ValidationError(c, "Invalid payment details", err.Error())
		case errors.Is(err, payments.ErrAlreadyPaid):
			utils.BadRequest(c, "Payment for this order has already been completed", nil)
		case errors.Is(err, payments.ErrPaymentInFlight):
			utils.BadRequest(c, "A payment is already in progress for this order", nil)
		case errors.Is(err, mpesa.ErrGatewayAuth), errors.Is(err, mpesa.ErrGatewayUnavailable):
			utils.LogError("Gateway failure for order %s: %v", order.OrderNumber, err)
			utils.BadGateway(c, "Payment service is temporarily unavailable, please try again", nil)
		case errors.Is(err, payments.ErrCorrelationWrite):
			utils.LogError("Correlation write failed for order %s: %v", order.OrderNumber, err)
			utils.InternalServerError(c, "Payment could not be tracked, support has been notified", nil)
		default:
			utils.LogError("Failed to initiate payment for order %s: %v", order.OrderNumber, err)
			utils.InternalServerError(c, "Failed to initiate payment", nil)
		}
		return
	}

	utils.LogInfo("STK push sent for order %s, checkout request ID: %s", order.OrderNumber, checkoutRequestID)
	utils.Success(c, "Payment initiated. Check your phone to complete the payment.", gin.H{
		"order_id":            order.ID,
		"order_number":        order.OrderNumber,
		"checkout_request_id": checkoutRequestID,
		"amount":              order.TotalAmount,
		"poll_interval_secs":  int(payments.DefaultPollInterval.Seconds()),
		"poll_timeout_secs":   int(payments.DefaultWaitTimeout.Seconds()),
	})
}

// POST /v1/payments/mpesa/callback
//
// Invoked by the gateway, not by the storefront. Non-2xx responses make the
// gateway redeliver, so persistence failures are surfaced as 500 while
// duplicates are acknowledged with 200.
func (pc *PaymentController) MpesaCallback(c *gin.Context) {
	utils.LogInfo("MpesaCallback called")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.LogError("Failed to read callback body: %v", err)
		utils.BadRequest(c, "Invalid callback body", nil)
		return
	}

	cb, err := mpesa.ParseCallback(body)
	if err != nil {
		utils.LogError("Malformed callback: %v", err)
		utils.BadRequest(c, "Malformed callback", nil)
		return
	}
	utils.LogInfo("Processing callback for checkout request ID: %s, result code: %d",
		cb.CheckoutRequestID, cb.ResultCode)

	if err := pc.Payments.HandleCallback(c.Request.Context(), cb); err != nil {
		switch {
		case errors.Is(err, payments.ErrCorrelationNotFound):
			utils.LogError("No order for checkout request ID: %s", cb.CheckoutRequestID)
			utils.NotFound(c, "Unknown checkout request")
		case errors.Is(err, mpesa.ErrMalformedCallback):
			utils.LogError("Malformed callback metadata for %s: %v", cb.CheckoutRequestID, err)
			utils.BadRequest(c, "Malformed callback", nil)
		default:
			utils.LogError("Reconciliation failed for %s: %v", cb.CheckoutRequestID, err)
			utils.InternalServerError(c, "Failed to process callback", nil)
		}
		return
	}

	utils.Success(c, "Callback processed", gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}

// GET /v1/orders/:id/payment/status
func (pc *PaymentController) GetPaymentStatus(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	order, err := getOwnedOrder(uint(orderID), user.ID)
	if err != nil {
		utils.NotFound(c, "Order not found")
		return
	}

	view, err := pc.Payments.PaymentStatus(c.Request.Context(), order.ID)
	if err != nil {
		utils.LogError("Failed to read payment status for order %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to read payment status", nil)
		return
	}

	utils.Success(c, "Payment status retrieved", gin.H{
		"payment_status": view.PaymentStatus,
		"status":         view.Status,
	})
}
