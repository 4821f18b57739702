package routes

import (
	"github.com/Mwangi-K/ElimuStore/controllers"
	"github.com/Mwangi-K/ElimuStore/middleware"
	"github.com/gin-gonic/gin"
)

// initUserRoutes sets up the storefront-facing routes
func initUserRoutes(api *gin.RouterGroup, paymentCtrl *controllers.PaymentController) {
	users := api.Group("/users")
	{
		users.POST("/register", controllers.RegisterUser)
		users.POST("/login", controllers.LoginUser)
	}

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/checkout", controllers.CreateOrder)

		orders := authed.Group("/orders")
		{
			orders.GET("", controllers.ListOrders)
			orders.GET("/:id", controllers.GetOrder)
			orders.GET("/:id/invoice", controllers.DownloadInvoice)

			orders.POST("/:id/payment/mpesa", paymentCtrl.InitiateMpesaPayment)
			orders.GET("/:id/payment/status", paymentCtrl.GetPaymentStatus)

			orders.POST("/:id/payment/card", controllers.InitiateCardPayment)
			orders.POST("/:id/payment/card/verify", controllers.VerifyCardPayment)
		}
	}
}
