package routes

import (
	"github.com/Mwangi-K/ElimuStore/controllers"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(paymentCtrl *controllers.PaymentController) *gin.Engine {
	router := gin.Default()

	// Session middleware for the storefront session surface
	store := cookie.NewStore([]byte("elimustore-session-key"))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   false, // Set to true in production with HTTPS
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("elimustore", store))

	api := router.Group("/v1")
	{
		// Gateway webhook. No auth: the caller is the gateway, matched by
		// correlation id, and a rejected delivery would never be retried.
		api.POST("/payments/mpesa/callback", paymentCtrl.MpesaCallback)

		initUserRoutes(api, paymentCtrl)
		initAdminRoutes(api)
	}

	return router
}
