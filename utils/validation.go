package utils

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// FieldValidationError represents a validation error for a specific field
type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldValidationErrors represents multiple field validation errors
type FieldValidationErrors []FieldValidationError

// Error implements the error interface
func (e FieldValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateUsername checks if the username meets the requirements
func ValidateUsername(username string) (bool, string) {
	if !usernameRegex.MatchString(username) {
		return false, "Username must be 3-20 characters and contain only letters, numbers and underscores"
	}
	return true, ""
}

// ValidateEmail checks if the email address is well formed
func ValidateEmail(email string) (bool, string) {
	if !emailRegex.MatchString(email) {
		return false, "Invalid email address"
	}
	return true, ""
}

// NormalizeMsisdn validates a payer phone number and converts it to the
// 2547XXXXXXXX form the gateway accepts. Inputs like "0712345678",
// "+254712345678" and "254712345678" all normalize to the same value.
func NormalizeMsisdn(phone string) (string, error) {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return "", fmt.Errorf("phone number is required")
	}

	parsed, err := libphonenumber.Parse(trimmed, "KE")
	if err != nil {
		return "", fmt.Errorf("invalid phone number: %v", err)
	}
	if !libphonenumber.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number: %s", phone)
	}

	// E164 gives +2547XXXXXXXX; the gateway wants it without the plus.
	msisdn := strings.TrimPrefix(libphonenumber.Format(parsed, libphonenumber.E164), "+")
	if !strings.HasPrefix(msisdn, "254") {
		return "", fmt.Errorf("phone number must be a Kenyan mobile number")
	}
	return msisdn, nil
}

// ValidateChargeAmount checks that an order total can be charged through the
// gateway, which only accepts positive whole currency units.
func ValidateChargeAmount(amount float64) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be greater than zero")
	}
	whole := math.Round(amount)
	if math.Abs(amount-whole) > 1e-9 {
		return 0, fmt.Errorf("amount must be a whole number of currency units")
	}
	return int(whole), nil
}
