package utils

import (
	"fmt"
	"strconv"

	"github.com/Mwangi-K/ElimuStore/config"
	"gopkg.in/gomail.v2"
)

// SendEmail sends an HTML email using the configured SMTP account
func SendEmail(to, subject, body string) error {
	cfg := config.AppConfig
	if cfg == nil || cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP is not configured")
	}

	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.SMTPFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUsername, cfg.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// SendPaymentAlert notifies the operator address about a payment that may
// have gone out to the payer but cannot be reconciled, e.g. when storing the
// correlation id failed after the STK push was already sent.
func SendPaymentAlert(orderNumber, checkoutRequestID string, cause error) error {
	cfg := config.AppConfig
	if cfg == nil || cfg.AdminAlertEmail == "" {
		return fmt.Errorf("admin alert email is not configured")
	}

	subject := fmt.Sprintf("Payment reconciliation alert for order %s", orderNumber)
	body := fmt.Sprintf(`
		<h2>Payment reconciliation alert</h2>
		<p>Order <strong>%s</strong> has an M-Pesa push in flight that may not be reconcilable.</p>
		<p>CheckoutRequestID: <code>%s</code></p>
		<p>Cause: %v</p>
		<p>Check the order and the gateway portal, and reconcile manually if the payer completed the payment.</p>
	`, orderNumber, checkoutRequestID, cause)

	return SendEmail(cfg.AdminAlertEmail, subject, body)
}
