package main

import (
	"log"
	"time"

	"github.com/Mwangi-K/ElimuStore/config"
	"github.com/Mwangi-K/ElimuStore/controllers"
	"github.com/Mwangi-K/ElimuStore/mpesa"
	"github.com/Mwangi-K/ElimuStore/payments"
	"github.com/Mwangi-K/ElimuStore/routes"
	"github.com/Mwangi-K/ElimuStore/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Missing gateway credentials are a deployment mistake; refuse to start
	if err := cfg.ValidateGateway(); err != nil {
		utils.LogError("Invalid gateway configuration: %v", err)
		log.Fatal("Invalid gateway configuration:", err)
	}

	// Initialize database
	config.InitDB()

	// Build the payment service with explicit collaborators
	gateway, err := mpesa.NewClient(mpesa.Config{
		ConsumerKey:    cfg.MpesaConsumerKey,
		ConsumerSecret: cfg.MpesaConsumerSecret,
		Shortcode:      cfg.MpesaShortcode,
		Passkey:        cfg.MpesaPasskey,
		CallbackURL:    cfg.MpesaCallbackURL,
		BaseURL:        cfg.MpesaBaseURL,
		Timeout:        30 * time.Second,
	})
	if err != nil {
		utils.LogError("Failed to build gateway client: %v", err)
		log.Fatal("Failed to build gateway client:", err)
	}

	paymentSvc := payments.NewService(
		gateway,
		payments.NewOrderStore(config.DB),
		payments.NewLedgerStore(config.DB),
		payments.NewEmailNotifier(),
	)
	paymentCtrl := controllers.NewPaymentController(paymentSvc)

	// Set up router
	router := routes.SetupRouter(paymentCtrl)

	// Add middleware
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	utils.LogInfo("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
