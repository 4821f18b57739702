package mpesa

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedCallback means a success callback is missing metadata the
// reconciler needs (receipt number or payer phone).
var ErrMalformedCallback = errors.New("mpesa: malformed callback")

// CallbackEnvelope is the outer shape of the gateway's result webhook
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

// STKCallback carries the final outcome of a push payment. ResultCode zero is
// success; anything else (e.g. 1032, payer cancelled) is a failure.
type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackMetadata is the name/value item list attached to success callbacks.
// Item order is not guaranteed by the gateway.
type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

// MetadataItem is a single named value in the callback metadata
type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// Succeeded reports whether the payer completed the payment
func (cb STKCallback) Succeeded() bool {
	return cb.ResultCode == 0
}

// lookup builds a name-to-value map once, so fields are resolved by name
// rather than by position in the item list.
func (m *CallbackMetadata) lookup() map[string]interface{} {
	values := make(map[string]interface{}, len(m.Item))
	for _, item := range m.Item {
		values[item.Name] = item.Value
	}
	return values
}

// metadataString renders a metadata value as a string. The gateway sends
// phone numbers as JSON numbers and receipts as strings.
func metadataString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case json.Number:
		return value.String()
	default:
		return ""
	}
}

// ReceiptAndPhone extracts the gateway receipt number and payer phone from a
// success callback's metadata. Missing keys make the callback malformed; the
// reconciler must not record a payment without a receipt.
func (cb STKCallback) ReceiptAndPhone() (receipt, phone string, err error) {
	if cb.CallbackMetadata == nil {
		return "", "", fmt.Errorf("%w: success callback has no metadata", ErrMalformedCallback)
	}
	values := cb.CallbackMetadata.lookup()

	receipt = metadataString(values["MpesaReceiptNumber"])
	if receipt == "" {
		return "", "", fmt.Errorf("%w: missing MpesaReceiptNumber", ErrMalformedCallback)
	}
	phone = metadataString(values["PhoneNumber"])
	if phone == "" {
		return "", "", fmt.Errorf("%w: missing PhoneNumber", ErrMalformedCallback)
	}
	return receipt, phone, nil
}

// ParseCallback decodes the webhook body delivered by the gateway
func ParseCallback(body []byte) (*STKCallback, error) {
	var envelope CallbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}
	cb := envelope.Body.STKCallback
	if cb.CheckoutRequestID == "" {
		return nil, fmt.Errorf("%w: missing CheckoutRequestID", ErrMalformedCallback)
	}
	return &cb, nil
}
