package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/v1/payments/mpesa/callback",
		BaseURL:        baseURL,
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	cfg := testConfig("")
	cfg.Passkey = ""
	_, err := NewClient(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passkey")
}

func TestSTKPushValidatesBeforeNetwork(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = client.STKPush(context.Background(), STKPushRequest{Amount: 0, PhoneNumber: "254712345678"})
	require.Error(t, err)

	_, err = client.STKPush(context.Background(), STKPushRequest{Amount: 100, PhoneNumber: ""})
	require.Error(t, err)

	assert.False(t, called, "no request should reach the gateway for invalid input")
}

func TestSTKPushSendsExpectedPayload(t *testing.T) {
	var tokenCalls int
	var payload stkPushPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			tokenCalls++
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "key", user)
			assert.Equal(t, "secret", pass)
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "token-1", ExpiresIn: "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			json.NewEncoder(w).Encode(STKPushResponse{
				MerchantRequestID:   "merchant-1",
				CheckoutRequestID:   "ws_CO_123",
				ResponseCode:        "0",
				ResponseDescription: "Success. Request accepted for processing",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	ack, err := client.STKPush(context.Background(), STKPushRequest{
		Amount:           1500,
		PhoneNumber:      "254712345678",
		AccountReference: "ELM-20240101-ABC123",
		TransactionDesc:  "ElimuStore order ELM-20240101-ABC123",
	})
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_123", ack.CheckoutRequestID)

	assert.Equal(t, "174379", payload.BusinessShortCode)
	assert.Equal(t, "CustomerPayBillOnline", payload.TransactionType)
	assert.Equal(t, 1500, payload.Amount)
	assert.Equal(t, "254712345678", payload.PartyA)
	assert.Equal(t, "174379", payload.PartyB)
	assert.Equal(t, "254712345678", payload.PhoneNumber)
	assert.Equal(t, "https://example.com/v1/payments/mpesa/callback", payload.CallBackURL)
	assert.Equal(t, "ELM-20240101-ABC123", payload.AccountReference)

	require.Len(t, payload.Timestamp, 14)
	decoded, err := base64.StdEncoding.DecodeString(payload.Password)
	require.NoError(t, err)
	assert.Equal(t, "174379"+"passkey"+payload.Timestamp, string(decoded))

	// A second push reuses the cached token
	_, err = client.STKPush(context.Background(), STKPushRequest{
		Amount: 200, PhoneNumber: "254712345678", AccountReference: "ELM-2",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tokenCalls)
}

func TestSTKPushTokenExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = client.STKPush(context.Background(), STKPushRequest{Amount: 100, PhoneNumber: "254712345678"})
	require.ErrorIs(t, err, ErrGatewayAuth)
}

func TestSTKPushTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/v1/generate" {
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "token-1", ExpiresIn: "3599"})
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = client.STKPush(context.Background(), STKPushRequest{Amount: 100, PhoneNumber: "254712345678"})
	require.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestSTKPushGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/v1/generate" {
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "token-1", ExpiresIn: "3599"})
			return
		}
		json.NewEncoder(w).Encode(STKPushResponse{
			ResponseCode:        "1",
			ResponseDescription: "Invalid Amount",
		})
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = client.STKPush(context.Background(), STKPushRequest{Amount: 100, PhoneNumber: "254712345678"})
	require.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Contains(t, err.Error(), "Invalid Amount")
}
