package models

import (
	"time"
)

// Fulfilment status constants
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusFailed     = "failed"
)

// Payment status constants
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Payment method constants
const (
	PaymentMethodMpesa = "mpesa"
	PaymentMethodCard  = "card"
	PaymentMethodCOD   = "cash_on_delivery"
)

type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID      uint   `json:"user_id"`
	User        User   `json:"user" gorm:"foreignKey:UserID"`

	// Monetary breakdown, fixed at creation time. TotalAmount is the amount
	// charged; it is never recomputed once a payment has been initiated.
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	Shipping    float64 `json:"shipping"`
	TotalAmount float64 `json:"total_amount"`

	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status" gorm:"default:'pending'"`
	Status        string `json:"status" gorm:"default:'pending'"`

	// M-Pesa correlation. MpesaRequestID is the CheckoutRequestID returned at
	// STK-push time; it is written once and is the only key the callback
	// handler can match on. Receipt and phone are set on successful
	// reconciliation only.
	MpesaRequestID     string `gorm:"uniqueIndex;default:null" json:"mpesa_request_id,omitempty"`
	MpesaReceiptNumber string `json:"mpesa_receipt_number,omitempty"`
	MpesaPhoneNumber   string `json:"mpesa_phone_number,omitempty"`

	// Card orders carry the Razorpay order id instead of the mpesa_* fields.
	RazorpayOrderID string `gorm:"default:null" json:"razorpay_order_id,omitempty"`

	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	OrderItems []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	OrderID  uint    `json:"order_id"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}
