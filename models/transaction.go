package models

import (
	"time"
)

// Transaction status constants. Ledger rows are written as completed and are
// never updated afterwards.
const (
	TransactionStatusCompleted = "completed"
)

// Gateway tags recorded on ledger rows
const (
	GatewayMpesa    = "mpesa"
	GatewayRazorpay = "razorpay"
)

// Transaction is an append-only ledger entry recorded once per successful
// payment. TransactionID holds the gateway receipt number; its unique index
// is what makes callback redelivery idempotent.
type Transaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TransactionID string    `gorm:"uniqueIndex;not null" json:"transaction_id"`
	OrderID       uint      `json:"order_id"`
	UserID        uint      `json:"user_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency" gorm:"default:'KES'"`
	PaymentMethod string    `json:"payment_method"`
	Gateway       string    `json:"gateway"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
