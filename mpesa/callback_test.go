package mpesa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successCallbackBody = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 0,
      "ResultDesc": "The service request is processed successfully.",
      "CallbackMetadata": {
        "Item": [
          {"Name": "Amount", "Value": 1500.00},
          {"Name": "MpesaReceiptNumber", "Value": "ABC123"},
          {"Name": "TransactionDate", "Value": 20191219102115},
          {"Name": "PhoneNumber", "Value": 254712345678}
        ]
      }
    }
  }
}`

const cancelledCallbackBody = `{
  "Body": {
    "stkCallback": {
      "MerchantRequestID": "29115-34620561-1",
      "CheckoutRequestID": "ws_CO_191220191020363925",
      "ResultCode": 1032,
      "ResultDesc": "Request cancelled by user."
    }
  }
}`

func TestParseCallbackSuccess(t *testing.T) {
	cb, err := ParseCallback([]byte(successCallbackBody))
	require.NoError(t, err)

	assert.Equal(t, "ws_CO_191220191020363925", cb.CheckoutRequestID)
	assert.True(t, cb.Succeeded())

	receipt, phone, err := cb.ReceiptAndPhone()
	require.NoError(t, err)
	assert.Equal(t, "ABC123", receipt)
	assert.Equal(t, "254712345678", phone)
}

func TestParseCallbackFailure(t *testing.T) {
	cb, err := ParseCallback([]byte(cancelledCallbackBody))
	require.NoError(t, err)

	assert.False(t, cb.Succeeded())
	assert.Equal(t, 1032, cb.ResultCode)
	assert.Nil(t, cb.CallbackMetadata)
}

func TestMetadataOrderIndependence(t *testing.T) {
	// Same items, reversed order; fields are looked up by name, not position
	body := `{
	  "Body": {
	    "stkCallback": {
	      "CheckoutRequestID": "ws_CO_1",
	      "ResultCode": 0,
	      "ResultDesc": "ok",
	      "CallbackMetadata": {
	        "Item": [
	          {"Name": "PhoneNumber", "Value": 254700000001},
	          {"Name": "MpesaReceiptNumber", "Value": "XYZ999"}
	        ]
	      }
	    }
	  }
	}`

	cb, err := ParseCallback([]byte(body))
	require.NoError(t, err)

	receipt, phone, err := cb.ReceiptAndPhone()
	require.NoError(t, err)
	assert.Equal(t, "XYZ999", receipt)
	assert.Equal(t, "254700000001", phone)
}

func TestMissingReceiptIsMalformed(t *testing.T) {
	body := `{
	  "Body": {
	    "stkCallback": {
	      "CheckoutRequestID": "ws_CO_1",
	      "ResultCode": 0,
	      "ResultDesc": "ok",
	      "CallbackMetadata": {
	        "Item": [
	          {"Name": "PhoneNumber", "Value": 254700000001}
	        ]
	      }
	    }
	  }
	}`

	cb, err := ParseCallback([]byte(body))
	require.NoError(t, err)

	_, _, err = cb.ReceiptAndPhone()
	require.ErrorIs(t, err, ErrMalformedCallback)
}

func TestSuccessWithoutMetadataIsMalformed(t *testing.T) {
	body := `{
	  "Body": {
	    "stkCallback": {
	      "CheckoutRequestID": "ws_CO_1",
	      "ResultCode": 0,
	      "ResultDesc": "ok"
	    }
	  }
	}`

	cb, err := ParseCallback([]byte(body))
	require.NoError(t, err)

	_, _, err = cb.ReceiptAndPhone()
	require.ErrorIs(t, err, ErrMalformedCallback)
}

func TestParseCallbackRejectsGarbage(t *testing.T) {
	_, err := ParseCallback([]byte("not json"))
	require.ErrorIs(t, err, ErrMalformedCallback)

	_, err = ParseCallback([]byte(`{"Body": {"stkCallback": {"ResultCode": 0}}}`))
	require.ErrorIs(t, err, ErrMalformedCallback)
}
