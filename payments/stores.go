package payments

import (
	"context"
	"errors"

	"github.com/Mwangi-K/ElimuStore/models"
	"gorm.io/gorm"
)

// gormOrderStore persists orders through GORM
type gormOrderStore struct {
	db *gorm.DB
}

// NewOrderStore returns an OrderStore backed by the given database handle
func NewOrderStore(db *gorm.DB) OrderStore {
	return &gormOrderStore{db: db}
}

func (s *gormOrderStore) ByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *gormOrderStore) ByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("mpesa_request_id = ?", checkoutRequestID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *gormOrderStore) SetCorrelationID(ctx context.Context, orderID uint, checkoutRequestID string) error {
	// Guarded set-once write: the update matches only while no correlation id
	// is stored, so a concurrent second initiation cannot overwrite the
	// first attempt's id.
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND (mpesa_request_id IS NULL OR mpesa_request_id = '')", orderID).
		Update("mpesa_request_id", checkoutRequestID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentInFlight
	}
	return nil
}

func (s *gormOrderStore) MarkPaid(ctx context.Context, orderID uint, receipt, phone string) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_status":       models.PaymentStatusPaid,
			"status":               models.OrderStatusProcessing,
			"mpesa_receipt_number": receipt,
			"mpesa_phone_number":   phone,
		}).Error
}

func (s *gormOrderStore) MarkFailed(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusFailed,
			"status":         models.OrderStatusFailed,
		}).Error
}

// gormLedgerStore appends transaction rows through GORM
type gormLedgerStore struct {
	db *gorm.DB
}

// NewLedgerStore returns a LedgerStore backed by the given database handle
func NewLedgerStore(db *gorm.DB) LedgerStore {
	return &gormLedgerStore{db: db}
}

func (s *gormLedgerStore) Record(ctx context.Context, tx *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		// Unique index on transaction_id; requires TranslateError on the
		// gorm connection.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateLedgerEntry
		}
		return err
	}
	return nil
}
