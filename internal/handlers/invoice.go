package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aeroops/internal/database"
	"aeroops/internal/middleware"
	"aeroops/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func ListInvoices(c *gin.Context) {
	q := database.DB.Preload("Client").Order("created_at desc")
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

type invoiceLine struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitCents   int64  `json:"unitCents"`
}

type invoiceRequest struct {
	ClientID uint          `json:"clientId"`
	Currency string        `json:"currency"`
	Lines    []invoiceLine `json:"lineItems"`
	DueAt    *time.Time    `json:"dueAt"`
}

// nextInvoiceNumber issues INV-YYYY-NNNN, numbering restarting each year.
// Runs inside the create transaction so two concurrent creates cannot
// both observe the same count (the unique index on number backstops it).
func nextInvoiceNumber(tx *gorm.DB, year int) (string, error) {
	var count int64
	if err := tx.Model(&models.Invoice{}).
		Where("number LIKE ?", fmt.Sprintf("INV-%d-%%", year)).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%04d", year, count+1), nil
}

func CreateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid invoice payload")
		return
	}
	if len(req.Lines) == 0 {
		respondError(c, http.StatusBadRequest, "validation", "at least one line item is required")
		return
	}

	var total int64
	for _, line := range req.Lines {
		if strings.TrimSpace(line.Description) == "" || line.Quantity <= 0 || line.UnitCents < 0 {
			respondError(c, http.StatusBadRequest, "validation", "invalid line item")
			return
		}
		total += int64(line.Quantity) * line.UnitCents
	}

	var client models.Client
	if err := database.DB.First(&client, req.ClientID).Error; err != nil {
		respondError(c, http.StatusBadRequest, "validation", "client not found")
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}
	if len(currency) != 3 {
		respondError(c, http.StatusBadRequest, "validation", "currency must be a 3-letter code")
		return
	}

	lines, err := json.Marshal(req.Lines)
	if err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "invalid line items")
		return
	}

	now := time.Now().UTC()
	invoice := models.Invoice{
		ClientID:    client.ID,
		Status:      models.InvoiceDraft,
		Currency:    currency,
		AmountCents: total,
		LineItems:   datatypes.JSON(lines),
		IssuedAt:    &now,
		DueAt:       req.DueAt,
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		number, err := nextInvoiceNumber(tx, now.Year())
		if err != nil {
			return err
		}
		invoice.Number = number
		return tx.Create(&invoice).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to create invoice")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "invoice", invoice.ID, "create", "Created invoice "+invoice.Number)
	}
	c.JSON(http.StatusCreated, gin.H{"invoice": invoice})
}

func GetInvoice(c *gin.Context) {
	var invoice models.Invoice
	if err := database.DB.Preload("Client").First(&invoice, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "invoice not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

// POST /api/invoices/:id/send
func SendInvoice(c *gin.Context) {
	invoiceTransition(c, models.InvoiceDraft, models.InvoiceSent, "sent")
}

// POST /api/invoices/:id/pay
func PayInvoice(c *gin.Context) {
	invoiceTransition(c, models.InvoiceSent, models.InvoicePaid, "paid")
}

func invoiceTransition(c *gin.Context, from, to models.InvoiceStatus, action string) {
	var invoice models.Invoice
	if err := database.DB.First(&invoice, c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "not_found", "invoice not found")
		return
	}
	if invoice.Status != from {
		respondError(c, http.StatusBadRequest, "validation",
			"invoice must be "+string(from)+" to be marked "+string(to))
		return
	}

	now := time.Now().UTC()
	invoice.Status = to
	switch to {
	case models.InvoiceSent:
		invoice.SentAt = &now
	case models.InvoicePaid:
		invoice.PaidAt = &now
	}

	if err := database.DB.Save(&invoice).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "db_error", "failed to update invoice")
		return
	}

	if user, ok := middleware.CurrentUser(c); ok {
		database.CreateAuditLog(user.ID, "invoice", invoice.ID, action, "Invoice "+invoice.Number+" marked "+string(to))
	}
	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}
