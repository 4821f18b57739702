package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mwangi-K/ElimuStore/models"
	"github.com/Mwangi-K/ElimuStore/mpesa"
	"github.com/Mwangi-K/ElimuStore/payments"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct{}

func (stubGateway) STKPush(context.Context, mpesa.STKPushRequest) (*mpesa.STKPushResponse, error) {
	return &mpesa.STKPushResponse{CheckoutRequestID: "ws_CO_stub"}, nil
}

type memoryOrderStore struct {
	order *models.Order
}

func (s *memoryOrderStore) ByID(_ context.Context, id uint) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, payments.ErrOrderNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *memoryOrderStore) ByCheckoutRequestID(_ context.Context, checkoutRequestID string) (*models.Order, error) {
	if s.order == nil || s.order.MpesaRequestID != checkoutRequestID {
		return nil, payments.ErrOrderNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *memoryOrderStore) SetCorrelationID(_ context.Context, _ uint, checkoutRequestID string) error {
	if s.order.MpesaRequestID != "" {
		return payments.ErrPaymentInFlight
	}
	s.order.MpesaRequestID = checkoutRequestID
	return nil
}

func (s *memoryOrderStore) MarkPaid(_ context.Context, _ uint, receipt, phone string) error {
	s.order.PaymentStatus = models.PaymentStatusPaid
	s.order.Status = models.OrderStatusProcessing
	s.order.MpesaReceiptNumber = receipt
	s.order.MpesaPhoneNumber = phone
	return nil
}

func (s *memoryOrderStore) MarkFailed(context.Context, uint) error {
	s.order.PaymentStatus = models.PaymentStatusFailed
	s.order.Status = models.OrderStatusFailed
	return nil
}

type memoryLedger struct {
	rows map[string]struct{}
}

func (l *memoryLedger) Record(_ context.Context, tx *models.Transaction) error {
	if l.rows == nil {
		l.rows = make(map[string]struct{})
	}
	if _, exists := l.rows[tx.TransactionID]; exists {
		return payments.ErrDuplicateLedgerEntry
	}
	l.rows[tx.TransactionID] = struct{}{}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) PaymentAlert(string, string, error) error { return nil }

func callbackRouter(orders *memoryOrderStore, ledger *memoryLedger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := payments.NewService(stubGateway{}, orders, ledger, noopNotifier{})
	ctrl := NewPaymentController(svc)
	router := gin.New()
	router.POST("/v1/payments/mpesa/callback", ctrl.MpesaCallback)
	return router
}

func postCallback(router *gin.Engine, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/mpesa/callback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

const webhookSuccessBody = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_1",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 1500.00},
          {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
          {"Name": "TransactionDate", "Value": 20260831143022},
          {"Name": "PhoneNumber", "Value": 254712345678}
        ]
      }
    }
  }
}`

func watchedOrder() *models.Order {
	return &models.Order{
		ID:             1,
		OrderNumber:    "ELM-20260831-A1B2C3",
		UserID:         7,
		TotalAmount:    1500,
		PaymentMethod:  models.PaymentMethodMpesa,
		PaymentStatus:  models.PaymentStatusPending,
		Status:         models.OrderStatusPending,
		MpesaRequestID: "ws_CO_1",
	}
}

func TestMpesaCallbackReconcilesOrder(t *testing.T) {
	orders := &memoryOrderStore{order: watchedOrder()}
	ledger := &memoryLedger{}
	router := callbackRouter(orders, ledger)

	rec := postCallback(router, webhookSuccessBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ResultCode":0`)

	assert.Equal(t, models.PaymentStatusPaid, orders.order.PaymentStatus)
	assert.Equal(t, "NLJ7RT61SV", orders.order.MpesaReceiptNumber)
	assert.Len(t, ledger.rows, 1)
}

func TestMpesaCallbackDuplicateDeliveryIsAcknowledged(t *testing.T) {
	orders := &memoryOrderStore{order: watchedOrder()}
	ledger := &memoryLedger{}
	router := callbackRouter(orders, ledger)

	require.Equal(t, http.StatusOK, postCallback(router, webhookSuccessBody).Code)
	// Redelivery must get a 200 so the gateway stops retrying
	require.Equal(t, http.StatusOK, postCallback(router, webhookSuccessBody).Code)
	assert.Len(t, ledger.rows, 1)
}

func TestMpesaCallbackUnknownCorrelationReturns404(t *testing.T) {
	order := watchedOrder()
	order.MpesaRequestID = "ws_CO_other"
	router := callbackRouter(&memoryOrderStore{order: order}, &memoryLedger{})

	rec := postCallback(router, webhookSuccessBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
}

func TestMpesaCallbackMalformedBodyReturns400(t *testing.T) {
	router := callbackRouter(&memoryOrderStore{order: watchedOrder()}, &memoryLedger{})

	assert.Equal(t, http.StatusBadRequest, postCallback(router, "not json").Code)
	assert.Equal(t, http.StatusBadRequest, postCallback(router, `{"Body":{"stkCallback":{}}}`).Code)

	// Success result with no metadata cannot be recorded
	noMetadata := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_1","ResultCode":0}}}`
	assert.Equal(t, http.StatusBadRequest, postCallback(router, noMetadata).Code)
}

func TestMpesaCallbackFailureCodeMarksOrderFailed(t *testing.T) {
	orders := &memoryOrderStore{order: watchedOrder()}
	ledger := &memoryLedger{}
	router := callbackRouter(orders, ledger)

	body := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_1","ResultCode":1032,"ResultDesc":"Request cancelled by user."}}}`
	rec := postCallback(router, body)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, models.PaymentStatusFailed, orders.order.PaymentStatus)
	assert.Empty(t, ledger.rows)
}
