package controllers

import (
	"github.com/Mwangi-K/ElimuStore/config"
	"github.com/Mwangi-K/ElimuStore/models"
	"github.com/Mwangi-K/ElimuStore/utils"
	"github.com/gin-gonic/gin"
)

// GET /v1/admin/transactions
//
// Lists ledger entries for reconciliation review. Ledger rows are append-only
// so this surface is read-only.
func ListTransactions(c *gin.Context) {
	utils.LogInfo("ListTransactions called")

	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.Transaction{})
	if gateway := c.Query("gateway"); gateway != "" {
		query = query.Where("gateway = ?", gateway)
	}
	if orderID := c.Query("order_id"); orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count transactions: %v", err)
		utils.InternalServerError(c, "Failed to fetch transactions", nil)
		return
	}

	var transactions []models.Transaction
	if err := query.Order("created_at DESC").
		Limit(pagination.Limit).Offset(pagination.Offset).
		Find(&transactions).Error; err != nil {
		utils.LogError("Failed to fetch transactions: %v", err)
		utils.InternalServerError(c, "Failed to fetch transactions", nil)
		return
	}

	utils.SuccessWithPagination(c, "Transactions retrieved successfully",
		transactions, total, pagination.Page, pagination.Limit)
}
