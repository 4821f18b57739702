package routes

import (
	"github.com/Mwangi-K/ElimuStore/controllers"
	"github.com/Mwangi-K/ElimuStore/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		// Transaction ledger
		admin.GET("/transactions", controllers.ListTransactions)
		admin.GET("/transactions/export", controllers.DownloadTransactionsExcel)
	}
}
