package labor

import (
	"fmt"
	"log"
	"strings"
	"time"

	"greencare-backend/internal/audit"
	"greencare-backend/internal/auth"
	"greencare-backend/internal/events"
	"greencare-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type LaborExpenseRequest struct {
	LaborID uint    `json:"labor_id"`
	Purpose string  `json:"purpose"`
	Amount  float64 `json:"amount"`
	Date    string  `json:"date"`
}

type LaborExpenseResponse struct {
	ID        uint    `json:"id"`
	LaborID   uint    `json:"labor_id"`
	LaborName string  `json:"labor_name"`
	Purpose   string  `json:"purpose"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
}

func expenseToResponse(e *models.LaborExpense) LaborExpenseResponse {
	return LaborExpenseResponse{
		ID:        e.ID,
		LaborID:   e.LaborID,
		LaborName: e.Labor.Name,
		Purpose:   e.Purpose,
		Amount:    e.Amount,
		Date:      e.Date.Format("2006-01-02"),
	}
}

// GET /api/labor-expenses?labor_id=...
func ListLaborExpensesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.LaborExpense{}).Preload("Labor").Order("date desc, id desc")

		if lidStr := c.Query("labor_id"); lidStr != "" {
			var lid uint
			if _, err := fmt.Sscan(lidStr, &lid); err != nil || lid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "labor_id is invalid")
			}
			dbq = dbq.Where("labor_id = ?", lid)
		}

		var rows []models.LaborExpense
		if err := dbq.Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list labor expenses")
		}

		resp := make([]LaborExpenseResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, expenseToResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/labor-expenses
func CreateLaborExpenseHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LaborExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Purpose = strings.TrimSpace(body.Purpose)
		if body.LaborID == 0 || body.Purpose == "" {
			return fiber.NewError(fiber.StatusBadRequest, "labor_id and purpose are required")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be > 0")
		}
		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
		}

		var worker models.Labor
		if err := db.First(&worker, "id = ?", body.LaborID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Worker not found")
		}

		e := models.LaborExpense{
			LaborID: body.LaborID,
			Purpose: body.Purpose,
			Amount:  body.Amount,
			Date:    d,
		}
		if err := db.Create(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record labor expense")
		}
		e.Labor = worker

		hub.Publish(events.Event{Collection: events.CollectionLaborExpenses, Action: events.ActionInsert, EntityID: e.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "labor_expense",
			EntityID:    e.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Labor expense: %s - %.2f (%s)", worker.Name, e.Amount, e.Purpose),
			Data:        expenseToResponse(&e),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.Status(fiber.StatusCreated).JSON(expenseToResponse(&e))
	}
}

// DELETE /api/labor-expenses/:id
func DeleteLaborExpenseHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.LaborExpense
		if err := db.Preload("Labor").First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Labor expense not found")
		}

		if err := db.Delete(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete labor expense")
		}

		hub.Publish(events.Event{Collection: events.CollectionLaborExpenses, Action: events.ActionDelete, EntityID: e.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "labor_expense",
			EntityID:    e.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Labor expense deleted: %.2f (%s)", e.Amount, e.Purpose),
			Data:        expenseToResponse(&e),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
