package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Mwangi-K/ElimuStore/config"
	"github.com/Mwangi-K/ElimuStore/models"
	"github.com/Mwangi-K/ElimuStore/utils"
	"github.com/gin-gonic/gin"
	razorpay "github.com/razorpay/razorpay-go"
	"gorm.io/gorm"
)

// POST /v1/orders/:id/payment/card
func InitiateCardPayment(c *gin.Context) {
	utils.LogInfo("InitiateCardPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
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
		utils.LogError("Order not found for ID: %d, user ID: %d", orderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		utils.LogError("Payment already completed for order %s", order.OrderNumber)
		utils.BadRequest(c, "Payment for this order has already been completed", nil)
		return
	}
	if order.RazorpayOrderID != "" {
		utils.LogError("Card payment already initiated for order %s", order.OrderNumber)
		utils.BadRequest(c, "A payment is already in progress for this order", nil)
		return
	}

	// Razorpay expects the amount in the smallest currency unit
	amountSubunits := int(order.TotalAmount * 100)
	utils.LogInfo("Creating card payment of %d subunits for order %s", amountSubunits, order.OrderNumber)

	client := razorpay.NewClient(config.AppConfig.RazorpayKey, config.AppConfig.RazorpaySecret)
	orderData := map[string]interface{}{
		"amount":          amountSubunits,
		"currency":        "KES",
		"receipt":         order.OrderNumber,
		"payment_capture": 1,
	}
	rzOrder, err := client.Order.Create(orderData, nil)
	if err != nil {
		utils.LogError("Failed to create card payment order for order %s: %v", order.OrderNumber, err)
		utils.BadGateway(c, "Failed to initiate card payment", nil)
		return
	}

	rzOrderID := fmt.Sprintf("%v", rzOrder["id"])
	res := config.DB.Model(&models.Order{}).
		Where("id = ? AND (razorpay_order_id IS NULL OR razorpay_order_id = '')", order.ID).
		Updates(map[string]interface{}{
			"payment_method":    models.PaymentMethodCard,
			"razorpay_order_id": rzOrderID,
		})
	if res.Error != nil {
		utils.LogError("Failed to store card payment reference for order %s: %v", order.OrderNumber, res.Error)
		utils.InternalServerError(c, "Failed to update order details", nil)
		return
	}
	if res.RowsAffected == 0 {
		utils.BadRequest(c, "A payment is already in progress for this order", nil)
		return
	}
	utils.LogInfo("Card payment initiated for order %s, gateway order %s", order.OrderNumber, rzOrderID)

	utils.Success(c, "Card payment initiated successfully", gin.H{
		"order": gin.H{
			"id":                order.ID,
			"order_number":      order.OrderNumber,
			"razorpay_order_id": rzOrderID,
			"amount":            fmt.Sprintf("%.2f", order.TotalAmount),
		},
		"key": config.AppConfig.RazorpayKey,
		"user": gin.H{
			"name":  user.Username,
			"email": user.Email,
		},
	})
}

// POST /v1/orders/:id/payment/card/verify
func VerifyCardPayment(c *gin.Context) {
	utils.LogInfo("VerifyCardPayment called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var req struct {
		RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
		RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
		RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid verification request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	// Verify signature
	keySecret := os.Getenv("RAZORPAY_SECRET")
	data := req.RazorpayOrderID + "|" + req.RazorpayPaymentID
	h := hmac.New(sha256.New, []byte(keySecret))
	h.Write([]byte(data))
	generatedSignature := hex.EncodeToString(h.Sum(nil))
	if generatedSignature != req.RazorpaySignature {
		utils.LogError("Card payment signature mismatch for order ID: %d, user ID: %d", orderID, user.ID)
		utils.BadRequest(c, "Payment verification failed", gin.H{"retry": true})
		return
	}

	order, err := getOwnedOrder(uint(orderID), user.ID)
	if err != nil {
		utils.LogError("Order not found for ID: %d, user ID: %d", orderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}

	if order.RazorpayOrderID != req.RazorpayOrderID {
		utils.LogError("Gateway order ID mismatch for order %s. Expected: %s, Received: %s",
			order.OrderNumber, order.RazorpayOrderID, req.RazorpayOrderID)
		utils.BadRequest(c, "Invalid payment reference", nil)
		return
	}

	// Once paid, stays paid: re-verification of an already paid order is a
	// no-op acknowledgement.
	if order.PaymentStatus == models.PaymentStatusPaid {
		utils.Success(c, "Payment already confirmed for this order", gin.H{"order_id": order.ID})
		return
	}

	if err := config.DB.Model(order).Updates(map[string]interface{}{
		"payment_status": models.PaymentStatusPaid,
		"status":         models.OrderStatusProcessing,
	}).Error; err != nil {
		utils.LogError("Failed to update order %s after card payment: %v", order.OrderNumber, err)
		utils.InternalServerError(c, "Failed to update order", nil)
		return
	}

	// Same ledger as the M-Pesa path; the payment id is the dedupe key
	ledgerErr := config.DB.Create(&models.Transaction{
		TransactionID: req.RazorpayPaymentID,
		OrderID:       order.ID,
		UserID:        user.ID,
		Amount:        order.TotalAmount,
		Currency:      "KES",
		PaymentMethod: models.PaymentMethodCard,
		Gateway:       models.GatewayRazorpay,
		Status:        models.TransactionStatusCompleted,
	}).Error
	if ledgerErr != nil && !errors.Is(ledgerErr, gorm.ErrDuplicatedKey) {
		utils.LogError("Failed to record ledger entry for order %s: %v", order.OrderNumber, ledgerErr)
		utils.InternalServerError(c, "Failed to record transaction", nil)
		return
	}
	utils.LogInfo("Card payment confirmed for order %s, payment ID %s", order.OrderNumber, req.RazorpayPaymentID)

	utils.Success(c, "Thank you for your payment! Your order is being processed.", gin.H{
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"total_amount":   fmt.Sprintf("%.2f", order.TotalAmount),
		"payment_method": models.PaymentMethodCard,
	})
}
