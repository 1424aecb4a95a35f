package invoice

import (
	"fmt"
	"log"
	"strings"
	"time"

	"greencare-backend/internal/audit"
	"greencare-backend/internal/auth"
	"greencare-backend/internal/events"
	"greencare-backend/internal/models"
	"greencare-backend/internal/settings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type InvoiceItemRequest struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

type InvoiceRequest struct {
	CompanyID uint                 `json:"company_id"`
	Status    string               `json:"status"`
	EmailSent bool                 `json:"email_sent"`
	Items     []InvoiceItemRequest `json:"items"`
}

type InvoiceItemResponse struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
}

type InvoiceResponse struct {
	ID            uint                  `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	CompanyID     uint                  `json:"company_id"`
	CompanyName   string                `json:"company_name"`
	Amount        float64               `json:"amount"`
	Status        models.InvoiceStatus  `json:"status"`
	EmailSent     bool                  `json:"email_sent"`
	Items         []InvoiceItemResponse `json:"items"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func toResponse(inv *models.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, InvoiceItemResponse{
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		})
	}
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CompanyID:     inv.CompanyID,
		CompanyName:   inv.Company.Name,
		Amount:        inv.Amount,
		Status:        inv.Status,
		EmailSent:     inv.EmailSent,
		Items:         items,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

func validStatus(s string) bool {
	switch models.InvoiceStatus(s) {
	case models.InvoiceStatusDraft, models.InvoiceStatusSent,
		models.InvoiceStatusPaid, models.InvoiceStatusOverdue:
		return true
	}
	return false
}

// validateItems enforces the line invariants: at least one line, a
// description per line, quantity > 0, rate >= 0. Returns the items with
// their per-line amounts and the invoice total.
func validateItems(reqs []InvoiceItemRequest) ([]models.InvoiceItem, float64, error) {
	if len(reqs) == 0 {
		return nil, 0, fiber.NewError(fiber.StatusBadRequest, "an invoice needs at least one line item")
	}

	items := make([]models.InvoiceItem, 0, len(reqs))
	var total float64
	for i, r := range reqs {
		desc := strings.TrimSpace(r.Description)
		if desc == "" {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("item %d: description is required", i+1))
		}
		if r.Quantity < 1 {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("item %d: quantity must be >= 1", i+1))
		}
		if r.Rate < 0 {
			return nil, 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("item %d: rate must be >= 0", i+1))
		}
		amount := r.Quantity * r.Rate
		items = append(items, models.InvoiceItem{
			Position:    i,
			Description: desc,
			Quantity:    r.Quantity,
			Rate:        r.Rate,
			Amount:      amount,
		})
		total += amount
	}
	return items, total, nil
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Company").Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("position asc")
	})
}

// GET /api/invoices?q=...&status=...
// Search covers the invoice number and the billed company's name.
func ListInvoicesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := preloadItems(db).Model(&models.Invoice{}).Order("invoices.created_at desc, invoices.id desc")

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			term := "%" + strings.ToLower(q) + "%"
			dbq = dbq.
				Joins("LEFT JOIN companies ON companies.id = invoices.company_id").
				Where("lower(invoices.invoice_number) LIKE ? OR lower(companies.name) LIKE ?", term, term)
		}
		if status := c.Query("status"); status != "" {
			if !validStatus(status) {
				return fiber.NewError(fiber.StatusBadRequest, "status is invalid")
			}
			dbq = dbq.Where("invoices.status = ?", status)
		}

		var invoices []models.Invoice
		if err := dbq.Find(&invoices).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list invoices")
		}

		resp := make([]InvoiceResponse, 0, len(invoices))
		for i := range invoices {
			resp = append(resp, toResponse(&invoices[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var inv models.Invoice
		if err := preloadItems(db).First(&inv, "invoices.id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}
		return c.JSON(toResponse(&inv))
	}
}

// POST /api/invoices
// The invoice number comes from the store-owned sequence and the amount
// is recomputed here; both client-supplied values are ignored.
func CreateInvoiceHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body InvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.CompanyID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "company_id is required")
		}
		if body.Status == "" {
			body.Status = string(models.InvoiceStatusDraft)
		}
		if !validStatus(body.Status) {
			return fiber.NewError(fiber.StatusBadRequest, "status must be draft, sent, paid or overdue")
		}
		items, total, err := validateItems(body.Items)
		if err != nil {
			return err
		}

		var company models.Company
		if err := db.First(&company, "id = ?", body.CompanyID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Company not found")
		}

		cfg, err := settings.Get(db)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load settings")
		}

		var inv models.Invoice
		err = db.Transaction(func(tx *gorm.DB) error {
			number, err := NextInvoiceNumber(tx, cfg.InvoicePrefix)
			if err != nil {
				return err
			}
			inv = models.Invoice{
				InvoiceNumber: number,
				CompanyID:     body.CompanyID,
				Amount:        total,
				Status:        models.InvoiceStatus(body.Status),
				EmailSent:     body.EmailSent,
				Items:         items,
			}
			return tx.Create(&inv).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create invoice")
		}
		inv.Company = company

		hub.Publish(events.Event{Collection: events.CollectionInvoices, Action: events.ActionInsert, EntityID: inv.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "invoice",
			EntityID:    inv.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Invoice %s for %s: %.2f", inv.InvoiceNumber, company.Name, inv.Amount),
			Data:        toResponse(&inv),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&inv))
	}
}

// PUT /api/invoices/:id
// Replaces the line set and recomputes the amount; the invoice number
// never changes.
func UpdateInvoiceHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var inv models.Invoice
		if err := preloadItems(db).First(&inv, "invoices.id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}

		var body InvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.CompanyID == 0 {
			body.CompanyID = inv.CompanyID
		}
		if body.Status == "" {
			body.Status = string(inv.Status)
		}
		if !validStatus(body.Status) {
			return fiber.NewError(fiber.StatusBadRequest, "status must be draft, sent, paid or overdue")
		}
		items, total, err := validateItems(body.Items)
		if err != nil {
			return err
		}

		var company models.Company
		if err := db.First(&company, "id = ?", body.CompanyID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Company not found")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].InvoiceID = inv.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			return tx.Model(&inv).Updates(map[string]interface{}{
				"company_id": body.CompanyID,
				"amount":     total,
				"status":     body.Status,
				"email_sent": body.EmailSent,
			}).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update invoice")
		}

		inv.CompanyID = body.CompanyID
		inv.Company = company
		inv.Amount = total
		inv.Status = models.InvoiceStatus(body.Status)
		inv.EmailSent = body.EmailSent
		inv.Items = items

		hub.Publish(events.Event{Collection: events.CollectionInvoices, Action: events.ActionUpdate, EntityID: inv.ID})

		return c.JSON(toResponse(&inv))
	}
}

// DELETE /api/invoices/:id
func DeleteInvoiceHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var inv models.Invoice
		if err := preloadItems(db).First(&inv, "invoices.id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Invoice{}, "id = ?", inv.ID).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete invoice")
		}

		hub.Publish(events.Event{Collection: events.CollectionInvoices, Action: events.ActionDelete, EntityID: inv.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "invoice",
			EntityID:    inv.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Invoice deleted: %s (%.2f)", inv.InvoiceNumber, inv.Amount),
			Data:        toResponse(&inv),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/invoices/:id/pdf
func InvoicePDFHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var inv models.Invoice
		if err := preloadItems(db).First(&inv, "invoices.id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Invoice not found")
		}

		cfg, err := settings.Get(db)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load settings")
		}

		pdf, err := RenderPDF(cfg, &inv, time.Now())
		if err != nil {
			log.Printf("invoice pdf render failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Could not render invoice PDF")
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", inv.InvoiceNumber+".pdf"))
		return c.Send(pdf)
	}
}
