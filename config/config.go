package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var DB *gorm.DB

// AppConfig holds the loaded configuration for the running process
var AppConfig *Config

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	// M-Pesa Daraja gateway
	MpesaConsumerKey    string
	MpesaConsumerSecret string
	MpesaPasskey        string
	MpesaShortcode      string
	MpesaCallbackURL    string
	MpesaBaseURL        string

	// Razorpay (card payments)
	RazorpayKey    string
	RazorpaySecret string

	// Operator notifications
	AdminAlertEmail string
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env file is fine in deployed environments; variables come
	// from the process environment there.
	_ = godotenv.Load()

	config := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		Port:       os.Getenv("PORT"),
		Env:        os.Getenv("ENV"),

		MpesaConsumerKey:    os.Getenv("MPESA_CONSUMER_KEY"),
		MpesaConsumerSecret: os.Getenv("MPESA_CONSUMER_SECRET"),
		MpesaPasskey:        os.Getenv("MPESA_PASSKEY"),
		MpesaShortcode:      os.Getenv("MPESA_SHORTCODE"),
		MpesaCallbackURL:    os.Getenv("MPESA_CALLBACK_URL"),
		MpesaBaseURL:        os.Getenv("MPESA_BASE_URL"),

		RazorpayKey:    os.Getenv("RAZORPAY_KEY"),
		RazorpaySecret: os.Getenv("RAZORPAY_SECRET"),

		AdminAlertEmail: os.Getenv("ADMIN_ALERT_EMAIL"),
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        os.Getenv("SMTP_PORT"),
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
	}

	AppConfig = config
	return config, nil
}

// ValidateGateway checks that every credential the payment flow depends on is
// present. A gap here is a deployment mistake, so the caller treats any error
// as fatal at startup rather than failing per request.
func (c *Config) ValidateGateway() error {
	required := map[string]string{
		"MPESA_CONSUMER_KEY":    c.MpesaConsumerKey,
		"MPESA_CONSUMER_SECRET": c.MpesaConsumerSecret,
		"MPESA_PASSKEY":         c.MpesaPasskey,
		"MPESA_SHORTCODE":       c.MpesaShortcode,
		"MPESA_CALLBACK_URL":    c.MpesaCallbackURL,
		"ADMIN_ALERT_EMAIL":     c.AdminAlertEmail,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("missing required configuration: %s", name)
		}
	}
	return nil
}
