package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mwangi-K/ElimuStore/models"
	"github.com/Mwangi-K/ElimuStore/mpesa"
	"github.com/Mwangi-K/ElimuStore/utils"
)

// Gateway is the slice of the M-Pesa client the service needs
type Gateway interface {
	STKPush(ctx context.Context, push mpesa.STKPushRequest) (*mpesa.STKPushResponse, error)
}

// OrderStore persists order payment state
type OrderStore interface {
	ByID(ctx context.Context, id uint) (*models.Order, error)
	ByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Order, error)
	// SetCorrelationID stores the correlation id on the order only if no
	// correlation id is present yet; a second attempt returns
	// ErrPaymentInFlight.
	SetCorrelationID(ctx context.Context, orderID uint, checkoutRequestID string) error
	// MarkPaid sets payment_status=paid, status=processing and the receipt
	// fields. Re-applying the same values is a valid no-op.
	MarkPaid(ctx context.Context, orderID uint, receipt, phone string) error
	MarkFailed(ctx context.Context, orderID uint) error
}

// LedgerStore appends transaction rows. Record returns
// ErrDuplicateLedgerEntry when a row with the same receipt already exists.
type LedgerStore interface {
	Record(ctx context.Context, tx *models.Transaction) error
}

// Notifier delivers operator alerts for payments that may be unreconcilable
type Notifier interface {
	PaymentAlert(orderNumber, checkoutRequestID string, cause error) error
}

// Service coordinates payment initiation and callback reconciliation. All
// collaborators are passed in explicitly so the service can be exercised with
// fakes.
type Service struct {
	gateway Gateway
	orders  OrderStore
	ledger  LedgerStore
	alerts  Notifier
}

// NewService wires a payment service from its collaborators
func NewService(gateway Gateway, orders OrderStore, ledger LedgerStore, alerts Notifier) *Service {
	return &Service{
		gateway: gateway,
		orders:  orders,
		ledger:  ledger,
		alerts:  alerts,
	}
}

// InitiatePayment validates the order and payer phone, sends the STK push and
// stores the returned correlation id on the order. Validation failures happen
// before any gateway call; the push itself is sent at most once.
func (s *Service) InitiatePayment(ctx context.Context, orderID uint, payerPhone string) (string, error) {
	order, err := s.orders.ByID(ctx, orderID)
	if err != nil {
		return "", err
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		return "", ErrAlreadyPaid
	}
	if order.MpesaRequestID != "" {
		return "", ErrPaymentInFlight
	}

	amount, err := utils.ValidateChargeAmount(order.TotalAmount)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msisdn, err := utils.NormalizeMsisdn(payerPhone)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ack, err := s.gateway.STKPush(ctx, mpesa.STKPushRequest{
		Amount:           amount,
		PhoneNumber:      msisdn,
		AccountReference: order.OrderNumber,
		TransactionDesc:  "ElimuStore order " + order.OrderNumber,
	})
	if err != nil {
		return "", err
	}

	// The callback can only be matched once this write lands. If it fails
	// the payer may still complete a payment we cannot reconcile, so the
	// operator is told about it rather than the error being swallowed.
	if err := s.orders.SetCorrelationID(ctx, order.ID, ack.CheckoutRequestID); err != nil {
		utils.LogError("Failed to store correlation id %s on order %s: %v",
			ack.CheckoutRequestID, order.OrderNumber, err)
		if alertErr := s.alerts.PaymentAlert(order.OrderNumber, ack.CheckoutRequestID, err); alertErr != nil {
			utils.LogError("Failed to send payment alert for order %s: %v", order.OrderNumber, alertErr)
		}
		return "", fmt.Errorf("%w: %v", ErrCorrelationWrite, err)
	}

	return ack.CheckoutRequestID, nil
}

// HandleCallback reconciles a gateway callback against the order it refers
// to. It is safe against duplicate and out-of-order delivery: ledger inserts
// dedupe on the receipt number, order updates are idempotent overwrites, and
// a paid order is never regressed to failed.
func (s *Service) HandleCallback(ctx context.Context, cb *mpesa.STKCallback) error {
	order, err := s.orders.ByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return fmt.Errorf("%w: %s", ErrCorrelationNotFound, cb.CheckoutRequestID)
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if !cb.Succeeded() {
		// Once paid, stays paid. A late or duplicate failure callback for an
		// order that already reconciled successfully is acknowledged without
		// touching the order.
		if order.PaymentStatus == models.PaymentStatusPaid {
			utils.LogInfo("Ignoring failure callback (code %d) for already paid order %s",
				cb.ResultCode, order.OrderNumber)
			return nil
		}
		utils.LogInfo("Payment failed for order %s: code %d, %s", order.OrderNumber, cb.ResultCode, cb.ResultDesc)
		if err := s.orders.MarkFailed(ctx, order.ID); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil
	}

	receipt, phone, err := cb.ReceiptAndPhone()
	if err != nil {
		return err
	}

	// A success callback for an order that already failed would reverse a
	// terminal state; acknowledge and leave it to the operator.
	if order.PaymentStatus == models.PaymentStatusFailed {
		utils.LogError("Success callback for failed order %s (receipt %s); not reversing terminal state",
			order.OrderNumber, receipt)
		return nil
	}

	// Ledger first: the insert is the idempotency anchor, so redelivery after
	// a partial failure converges. A duplicate receipt means this callback
	// was already applied.
	err = s.ledger.Record(ctx, &models.Transaction{
		TransactionID: receipt,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Amount:        order.TotalAmount,
		Currency:      "KES",
		PaymentMethod: models.PaymentMethodMpesa,
		Gateway:       models.GatewayMpesa,
		Status:        models.TransactionStatusCompleted,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateLedgerEntry) {
			utils.LogInfo("Duplicate callback for order %s, receipt %s already recorded", order.OrderNumber, receipt)
		} else {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	if err := s.orders.MarkPaid(ctx, order.ID, receipt, phone); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	utils.LogInfo("Reconciled payment for order %s: receipt %s", order.OrderNumber, receipt)
	return nil
}

// StatusView is the polling surface the client waiter reads
type StatusView struct {
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
}

// PaymentStatus returns the current payment and fulfilment status of an order
func (s *Service) PaymentStatus(ctx context.Context, orderID uint) (*StatusView, error) {
	order, err := s.orders.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &StatusView{
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
	}, nil
}
