package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// SandboxBaseURL is the Daraja sandbox endpoint, used when no base URL is
	// configured.
	SandboxBaseURL = "https://sandbox.safaricom.co.ke"

	defaultTimeout = 30 * time.Second

	// Access tokens live for an hour; refresh a little ahead of expiry so a
	// request never goes out with a token about to lapse.
	tokenExpiryMargin = 2 * time.Minute
)

var (
	// ErrGatewayAuth means the client-credential token exchange failed. The
	// whole initiation attempt can be retried later.
	ErrGatewayAuth = errors.New("mpesa: gateway authentication failed")

	// ErrGatewayUnavailable means the push request failed at the transport
	// level. The caller must not assume the push was or wasn't delivered, and
	// must not retry automatically: a retry sends a second prompt to the
	// payer's handset.
	ErrGatewayUnavailable = errors.New("mpesa: gateway unavailable")
)

// Config carries everything the client needs to talk to the Daraja API. It is
// passed in explicitly; the client keeps no process-wide state.
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	BaseURL        string
	Timeout        time.Duration
}

// Validate reports the first missing required field
func (c Config) Validate() error {
	required := []struct {
		name, value string
	}{
		{"consumer key", c.ConsumerKey},
		{"consumer secret", c.ConsumerSecret},
		{"shortcode", c.Shortcode},
		{"passkey", c.Passkey},
		{"callback URL", c.CallbackURL},
	}
	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("mpesa: missing %s", field.name)
		}
	}
	return nil
}

// Client issues STK-push requests against the Daraja API
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient builds a client from the given config. Missing credentials are a
// configuration error and fail here, not per request.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = SandboxBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// token returns a cached access token, exchanging client credentials for a
// fresh one when the cached token is missing or near expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpiryMargin)) {
		return c.accessToken, nil
	}

	url := c.cfg.BaseURL + "/oauth/v1/generate?grant_type=client_credentials"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayAuth, err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint returned %d", ErrGatewayAuth, resp.StatusCode)
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayAuth, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrGatewayAuth)
	}

	ttl := time.Hour
	if secs, err := time.ParseDuration(body.ExpiresIn + "s"); err == nil && secs > 0 {
		ttl = secs
	}
	c.accessToken = body.AccessToken
	c.tokenExpiry = time.Now().Add(ttl)
	return c.accessToken, nil
}

// password derives the Lipa Na M-Pesa password for the given timestamp
func (c *Client) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp))
}

// STKPushRequest is the caller-facing input for a push payment
type STKPushRequest struct {
	Amount           int
	PhoneNumber      string
	AccountReference string
	TransactionDesc  string
}

// stkPushPayload is the wire shape the Daraja API expects
type stkPushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int    `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// STKPushResponse is the gateway's acknowledgement of an accepted push
type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPush sends a push-payment prompt to the payer's handset and returns the
// gateway acknowledgement carrying the CheckoutRequestID used to correlate
// the asynchronous callback. The request is sent exactly once.
func (c *Client) STKPush(ctx context.Context, push STKPushRequest) (*STKPushResponse, error) {
	if push.Amount <= 0 {
		return nil, fmt.Errorf("mpesa: amount must be positive, got %d", push.Amount)
	}
	if push.PhoneNumber == "" {
		return nil, fmt.Errorf("mpesa: phone number is required")
	}

	accessToken, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	payload := stkPushPayload{
		BusinessShortCode: c.cfg.Shortcode,
		Password:          c.password(timestamp),
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            push.Amount,
		PartyA:            push.PhoneNumber,
		PartyB:            c.cfg.Shortcode,
		PhoneNumber:       push.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  push.AccountReference,
		TransactionDesc:   push.TransactionDesc,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("mpesa: failed to marshal push request: %v", err)
	}

	url := c.cfg.BaseURL + "/mpesa/stkpush/v1/processrequest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: push endpoint returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var ack STKPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if ack.ResponseCode != "0" {
		return nil, fmt.Errorf("%w: gateway rejected push: %s", ErrGatewayUnavailable, ack.ResponseDescription)
	}
	if ack.CheckoutRequestID == "" {
		return nil, fmt.Errorf("%w: gateway returned no CheckoutRequestID", ErrGatewayUnavailable)
	}
	return &ack, nil
}
