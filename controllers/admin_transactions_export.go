package controllers

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/Mwangi-K/ElimuStore/config"
	"github.com/Mwangi-K/ElimuStore/models"
	"github.com/Mwangi-K/ElimuStore/utils"
)

// Admin: Download the transaction ledger as Excel
func DownloadTransactionsExcel(c *gin.Context) {
	utils.LogInfo("DownloadTransactionsExcel called")

	period := c.DefaultQuery("period", "day")
	utils.LogDebug("Generating ledger export for period: %s", period)

	now := time.Now()
	var startDate, endDate time.Time

	switch period {
	case "day":
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
	case "week":
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		startDate = endDate.AddDate(0, 0, -6)
		startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	case "month":
		startDate = now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		endDate = now.Add(24 * time.Hour)
	default:
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	var transactions []models.Transaction
	if err := config.DB.Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		utils.LogError("Failed to fetch transactions for export: %v", err)
		utils.InternalServerError(c, "Failed to fetch transactions", nil)
		return
	}
	utils.LogDebug("Retrieved %d transactions for export", len(transactions))

	// Summary totals per gateway
	var totalAmount float64
	byGateway := make(map[string]float64)
	for _, tx := range transactions {
		totalAmount += tx.Amount
		byGateway[tx.Gateway] += tx.Amount
	}
	totalAmount = math.Round(totalAmount*100) / 100

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", nil)
		return
	}

	// Company details
	row := sheet.AddRow()
	row.AddCell().SetString("ELIMUSTORE - Transaction Ledger")
	row = sheet.AddRow()
	row.AddCell().SetString("Moi Avenue, Nairobi, Kenya")
	row = sheet.AddRow()
	row.AddCell().SetString("Email: support@elimustore.co.ke")
	row = sheet.AddRow()
	row.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	// Table headers
	headers := []string{"ID", "Receipt/Transaction ID", "Order ID", "User ID", "Gateway", "Method", "Amount", "Currency", "Status", "Date"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	// Table rows
	for _, tx := range transactions {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(tx.ID))
		row.AddCell().SetString(tx.TransactionID)
		row.AddCell().SetInt(int(tx.OrderID))
		row.AddCell().SetInt(int(tx.UserID))
		row.AddCell().SetString(tx.Gateway)
		row.AddCell().SetString(tx.PaymentMethod)
		row.AddCell().SetFloat(tx.Amount)
		row.AddCell().SetString(tx.Currency)
		row.AddCell().SetString(tx.Status)
		row.AddCell().SetString(tx.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	// Summary
	sheet.AddRow()
	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Total transactions")
	summaryRow.AddCell().SetInt(len(transactions))
	summaryRow = sheet.AddRow()
	summaryRow.AddCell().SetString("Total amount (KES)")
	summaryRow.AddCell().SetFloat(totalAmount)
	for gateway, amount := range byGateway {
		gwRow := sheet.AddRow()
		gwRow.AddCell().SetString("Total via " + gateway)
		gwRow.AddCell().SetFloat(math.Round(amount*100) / 100)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to generate export", nil)
		return
	}
	utils.LogInfo("Ledger export generated with %d transactions", len(transactions))

	filename := fmt.Sprintf("transactions-%s-%s.xlsx", period, now.Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
