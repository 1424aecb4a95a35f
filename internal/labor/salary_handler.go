package labor

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
	"gorm.io/gorm/clause"
)

type SalaryPaymentRequest struct {
	Month       string  `json:"month"` // month name, e.g. "June"
	Year        int     `json:"year"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	PaymentDate string  `json:"payment_date"` // required when status is paid
}

type SalaryPaymentResponse struct {
	ID          uint                `json:"id"`
	LaborID     uint                `json:"labor_id"`
	Month       string              `json:"month"`
	Year        int                 `json:"year"`
	Amount      float64             `json:"amount"`
	Status      models.SalaryStatus `json:"status"`
	PaymentDate *string             `json:"payment_date"`
}

func salaryToResponse(sp *models.SalaryPayment) SalaryPaymentResponse {
	var pd *string
	if sp.PaymentDate != nil {
		s := sp.PaymentDate.Format("2006-01-02")
		pd = &s
	}
	return SalaryPaymentResponse{
		ID:          sp.ID,
		LaborID:     sp.LaborID,
		Month:       sp.Month,
		Year:        sp.Year,
		Amount:      sp.Amount,
		Status:      sp.Status,
		PaymentDate: pd,
	}
}

func validMonth(name string) bool {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return true
		}
	}
	return false
}

// PUT /api/labor/:id/salary
// Upsert keyed by (labor, month, year) through the composite unique
// index. Submitting the same period twice updates the single existing
// row; two concurrent submissions cannot both insert.
func UpsertSalaryPaymentHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var worker models.Labor
		if err := db.First(&worker, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Worker not found")
		}

		var body SalaryPaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if !validMonth(body.Month) {
			return fiber.NewError(fiber.StatusBadRequest, "month must be a full month name, e.g. 'June'")
		}
		if body.Year < 2000 || body.Year > 2100 {
			return fiber.NewError(fiber.StatusBadRequest, "year is out of range")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be > 0")
		}
		status := models.SalaryStatus(body.Status)
		if status != models.SalaryStatusPaid && status != models.SalaryStatusPending {
			return fiber.NewError(fiber.StatusBadRequest, "status must be paid or pending")
		}

		var paymentDate *time.Time
		if status == models.SalaryStatusPaid {
			if body.PaymentDate == "" {
				return fiber.NewError(fiber.StatusBadRequest, "payment_date is required when status is paid")
			}
			d, err := time.Parse("2006-01-02", body.PaymentDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "payment_date must be 'YYYY-MM-DD'")
			}
			paymentDate = &d
		}

		sp := models.SalaryPayment{
			LaborID:     worker.ID,
			Month:       body.Month,
			Year:        body.Year,
			Amount:      body.Amount,
			Status:      status,
			PaymentDate: paymentDate,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "labor_id"}, {Name: "month"}, {Name: "year"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "status", "payment_date", "updated_at"}),
		}).Create(&sp).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record salary payment")
		}

		// Re-read: on conflict the returned struct does not carry the
		// existing row's id.
		var saved models.SalaryPayment
		if err := db.Where("labor_id = ? AND month = ? AND year = ?", worker.ID, body.Month, body.Year).
			First(&saved).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load salary payment")
		}

		hub.Publish(events.Event{Collection: events.CollectionSalaryPayments, Action: events.ActionUpdate, EntityID: saved.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "salary_payment",
			EntityID:    saved.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Salary %s for %s: %s %d - %.2f", saved.Status, worker.Name, saved.Month, saved.Year, saved.Amount),
			Data:        salaryToResponse(&saved),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.JSON(salaryToResponse(&saved))
	}
}

// GET /api/labor/:id/salary
// Payment history, newest period first.
func ListSalaryPaymentsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var worker models.Labor
		if err := db.First(&worker, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Worker not found")
		}

		var rows []models.SalaryPayment
		if err := db.Where("labor_id = ?", worker.ID).
			Order("year desc, id desc").
			Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list salary payments")
		}

		resp := make([]SalaryPaymentResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, salaryToResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}
