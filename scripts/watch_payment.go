package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/Mwangi-K/ElimuStore/payments"
)

// watch_payment polls an order's payment status until it reaches a terminal
// state, mirroring what the storefront client does after initiating an STK
// push. Useful for watching a payment from a terminal during support work:
//
//	go run scripts/watch_payment.go -base http://localhost:8080 -order 42 -token <jwt>
func main() {
	base := flag.String("base", "http://localhost:8080", "API base URL")
	orderID := flag.Uint("order", 0, "order ID to watch")
	token := flag.String("token", "", "bearer token for the order's owner")
	interval := flag.Duration("interval", 5*time.Second, "poll interval")
	timeout := flag.Duration("timeout", 120*time.Second, "waiting window")
	flag.Parse()

	if *orderID == 0 || *token == "" {
		fmt.Fprintln(os.Stderr, "usage: watch_payment -order <id> -token <jwt> [-base url]")
		os.Exit(2)
	}

	url := fmt.Sprintf("%s/v1/orders/%d/payment/status", *base, *orderID)
	httpClient := &http.Client{Timeout: 10 * time.Second}

	status := func(ctx context.Context) (*payments.StatusView, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+*token)

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
		}

		var body struct {
			Data payments.StatusView `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, err
		}
		fmt.Printf("payment_status=%s status=%s\n", body.Data.PaymentStatus, body.Data.Status)
		return &body.Data, nil
	}

	waiter := payments.NewWaiter(status,
		payments.WithPollInterval(*interval),
		payments.WithTimeout(*timeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		waiter.Cancel()
	}()

	// The payment is assumed to be already initiated; watching starts at the
	// awaiting-confirmation step.
	final, err := waiter.Run(ctx, func(context.Context) error { return nil })
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "watch failed:", err)
		os.Exit(1)
	}
	fmt.Println("final state:", final)
}
