package controllers

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Mwangi-K/ElimuStore/config"
	"github.com/Mwangi-K/ElimuStore/models"
	"github.com/Mwangi-K/ElimuStore/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CheckoutItemRequest is a single line item in a checkout request
type CheckoutItemRequest struct {
	Title    string  `json:"title" binding:"required"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
	Price    float64 `json:"price" binding:"required,gt=0"`
}

// CheckoutRequest is the request body for creating an order
type CheckoutRequest struct {
	Items         []CheckoutItemRequest `json:"items" binding:"required,min=1,dive"`
	Tax           float64               `json:"tax" binding:"min=0"`
	Shipping      float64               `json:"shipping" binding:"min=0"`
	PaymentMethod string                `json:"payment_method" binding:"required"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// generateOrderNumber produces a human-readable unique order number
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("ELM-%s-%s", time.Now().Format("20060102"), suffix)
}

// POST /v1/checkout
//
// Creates the order with its monetary breakdown fixed: total = subtotal +
// tax + shipping, computed here and never recomputed once a payment has been
// initiated against the order.
func CreateOrder(c *gin.Context) {
	utils.LogInfo("CreateOrder called")
	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid checkout request for user ID: %d: %v", user.ID, err)
		utils.BadRequest(c, "Invalid checkout request", err.Error())
		return
	}

	switch req.PaymentMethod {
	case models.PaymentMethodMpesa, models.PaymentMethodCard, models.PaymentMethodCOD:
	default:
		utils.LogError("Unsupported payment method %q for user ID: %d", req.PaymentMethod, user.ID)
		utils.BadRequest(c, "Unsupported payment method", nil)
		return
	}

	var subtotal float64
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		lineTotal := round2(item.Price * float64(item.Quantity))
		subtotal += lineTotal
		items = append(items, models.OrderItem{
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
			Total:    lineTotal,
		})
	}
	subtotal = round2(subtotal)
	total := round2(subtotal + req.Tax + req.Shipping)

	order := models.Order{
		OrderNumber:   generateOrderNumber(),
		UserID:        user.ID,
		Subtotal:      subtotal,
		Tax:           req.Tax,
		Shipping:      req.Shipping,
		TotalAmount:   total,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.OrderStatusPending,
		OrderItems:    items,
	}

	if err := config.DB.Create(&order).Error; err != nil {
		utils.LogError("Failed to create order for user ID: %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to create order", nil)
		return
	}
	utils.LogInfo("Created order %s for user ID: %d, total: %.2f", order.OrderNumber, user.ID, total)

	utils.Created(c, "Order created successfully", gin.H{
		"order": gin.H{
			"id":             order.ID,
			"order_number":   order.OrderNumber,
			"subtotal":       fmt.Sprintf("%.2f", order.Subtotal),
			"tax":            fmt.Sprintf("%.2f", order.Tax),
			"shipping":       fmt.Sprintf("%.2f", order.Shipping),
			"total_amount":   fmt.Sprintf("%.2f", order.TotalAmount),
			"payment_method": order.PaymentMethod,
			"payment_status": order.PaymentStatus,
			"status":         order.Status,
		},
	})
}
