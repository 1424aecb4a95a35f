package payment

import (
	"fmt"
	"log"
	"time"

	"greencare-backend/internal/audit"
	"greencare-backend/internal/auth"
	"greencare-backend/internal/events"
	"greencare-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PaymentRequest struct {
	CompanyID uint    `json:"company_id"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"` // "2025-06-15"
	Reference string  `json:"reference"`
	Status    string  `json:"status"`
}

type PaymentResponse struct {
	ID          uint                 `json:"id"`
	CompanyID   uint                 `json:"company_id"`
	CompanyName string               `json:"company_name"`
	Amount      float64              `json:"amount"`
	Date        string               `json:"date"`
	Reference   string               `json:"reference"`
	Status      models.PaymentStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

func toResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		CompanyName: p.Company.Name,
		Amount:      p.Amount,
		Date:        p.Date.Format("2006-01-02"),
		Reference:   p.Reference,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
	}
}

func validStatus(s string) bool {
	switch models.PaymentStatus(s) {
	case models.PaymentStatusPaid, models.PaymentStatusPending, models.PaymentStatusOverdue:
		return true
	}
	return false
}

func parseBody(c *fiber.Ctx) (*PaymentRequest, time.Time, error) {
	var body PaymentRequest
	if err := c.BodyParser(&body); err != nil {
		return nil, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if body.CompanyID == 0 {
		return nil, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "company_id is required")
	}
	if body.Amount <= 0 {
		return nil, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "amount must be > 0")
	}
	if !validStatus(body.Status) {
		return nil, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "status must be paid, pending or overdue")
	}
	d, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		return nil, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
	}
	return &body, d, nil
}

// GET /api/payments?company_id=...&status=...&from=...&to=...
func ListPaymentsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Payment{}).Preload("Company").Order("date desc, id desc")

		if cidStr := c.Query("company_id"); cidStr != "" {
			var cid uint
			if _, err := fmt.Sscan(cidStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "company_id is invalid")
			}
			dbq = dbq.Where("company_id = ?", cid)
		}
		if status := c.Query("status"); status != "" {
			if !validStatus(status) {
				return fiber.NewError(fiber.StatusBadRequest, "status is invalid")
			}
			dbq = dbq.Where("status = ?", status)
		}
		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from is invalid")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to is invalid")
			}
			dbq = dbq.Where("date <= ?", to)
		}

		var rows []models.Payment
		if err := dbq.Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list payments")
		}

		resp := make([]PaymentResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/payments
func CreatePaymentHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, date, err := parseBody(c)
		if err != nil {
			return err
		}

		var company models.Company
		if err := db.First(&company, "id = ?", body.CompanyID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Company not found")
		}

		p := models.Payment{
			CompanyID: body.CompanyID,
			Amount:    body.Amount,
			Date:      date,
			Reference: body.Reference,
			Status:    models.PaymentStatus(body.Status),
		}
		if err := db.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record payment")
		}
		p.Company = company

		hub.Publish(events.Event{Collection: events.CollectionPayments, Action: events.ActionInsert, EntityID: p.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "payment",
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Payment recorded: %s - %.2f", company.Name, p.Amount),
			Data:        toResponse(&p),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&p))
	}
}

// PUT /api/payments/:id
func UpdatePaymentHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Payment
		if err := db.Preload("Company").First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		}

		body, date, err := parseBody(c)
		if err != nil {
			return err
		}

		if body.CompanyID != p.CompanyID {
			var company models.Company
			if err := db.First(&company, "id = ?", body.CompanyID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Company not found")
			}
			p.Company = company
		}

		p.CompanyID = body.CompanyID
		p.Amount = body.Amount
		p.Date = date
		p.Reference = body.Reference
		p.Status = models.PaymentStatus(body.Status)

		if err := db.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update payment")
		}

		hub.Publish(events.Event{Collection: events.CollectionPayments, Action: events.ActionUpdate, EntityID: p.ID})

		return c.JSON(toResponse(&p))
	}
}

// DELETE /api/payments/:id
func DeletePaymentHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Payment
		if err := db.Preload("Company").First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Payment not found")
		}

		if err := db.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete payment")
		}

		hub.Publish(events.Event{Collection: events.CollectionPayments, Action: events.ActionDelete, EntityID: p.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "payment",
			EntityID:    p.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Payment deleted: %.2f (%s)", p.Amount, p.Reference),
			Data:        toResponse(&p),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
