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

type LaborRequest struct {
	Name         string  `json:"name"`
	PhotoURL     string  `json:"photo_url"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	Role         string  `json:"role"`
	SalaryType   string  `json:"salary_type"`
	SalaryAmount float64 `json:"salary_amount"`
}

type LaborResponse struct {
	ID           uint              `json:"id"`
	Name         string            `json:"name"`
	PhotoURL     string            `json:"photo_url"`
	Phone        string            `json:"phone"`
	Address      string            `json:"address"`
	Role         string            `json:"role"`
	SalaryType   models.SalaryType `json:"salary_type"`
	SalaryAmount float64           `json:"salary_amount"`
	// Salary status for the current wall-clock month, derived from the
	// salary payment records: "paid", "pending", or "unpaid" when no
	// record exists yet.
	CurrentMonthSalaryStatus string    `json:"current_month_salary_status"`
	TotalExpenses            float64   `json:"total_expenses"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

func validSalaryType(s string) bool {
	switch models.SalaryType(s) {
	case models.SalaryTypeMonthly, models.SalaryTypeWeekly, models.SalaryTypeDaily:
		return true
	}
	return false
}

func validateLabor(body *LaborRequest) error {
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if !validSalaryType(body.SalaryType) {
		return fiber.NewError(fiber.StatusBadRequest, "salary_type must be monthly, weekly or daily")
	}
	if body.SalaryAmount < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "salary_amount must be >= 0")
	}
	return nil
}

// GET /api/labor?q=...
// Search covers name, role and phone. Each row carries the current
// month's salary status and the worker's expense total.
func ListLaborHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Labor{}).Order("name asc")

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			term := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("lower(name) LIKE ? OR lower(role) LIKE ? OR lower(phone) LIKE ?", term, term, term)
		}

		var workers []models.Labor
		if err := dbq.Find(&workers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list workers")
		}

		now := time.Now()
		statusByLabor := make(map[uint]models.SalaryStatus)
		var salaries []models.SalaryPayment
		if err := db.Where("month = ? AND year = ?", now.Month().String(), now.Year()).Find(&salaries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load salary records")
		}
		for _, sp := range salaries {
			statusByLabor[sp.LaborID] = sp.Status
		}

		type expRow struct {
			LaborID uint    `gorm:"column:labor_id"`
			Total   float64 `gorm:"column:total"`
		}
		var expRows []expRow
		if err := db.Model(&models.LaborExpense{}).
			Select("labor_id, SUM(amount) as total").
			Group("labor_id").
			Scan(&expRows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load expense totals")
		}
		expByLabor := make(map[uint]float64, len(expRows))
		for _, r := range expRows {
			expByLabor[r.LaborID] = r.Total
		}

		resp := make([]LaborResponse, 0, len(workers))
		for i := range workers {
			w := &workers[i]
			status := "unpaid"
			if s, ok := statusByLabor[w.ID]; ok {
				status = string(s)
			}
			resp = append(resp, LaborResponse{
				ID:                       w.ID,
				Name:                     w.Name,
				PhotoURL:                 w.PhotoURL,
				Phone:                    w.Phone,
				Address:                  w.Address,
				Role:                     w.Role,
				SalaryType:               w.SalaryType,
				SalaryAmount:             w.SalaryAmount,
				CurrentMonthSalaryStatus: status,
				TotalExpenses:            expByLabor[w.ID],
				CreatedAt:                w.CreatedAt,
				UpdatedAt:                w.UpdatedAt,
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/labor
func CreateLaborHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LaborRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validateLabor(&body); err != nil {
			return err
		}

		w := models.Labor{
			Name:         body.Name,
			PhotoURL:     body.PhotoURL,
			Phone:        body.Phone,
			Address:      body.Address,
			Role:         body.Role,
			SalaryType:   models.SalaryType(body.SalaryType),
			SalaryAmount: body.SalaryAmount,
		}
		if err := db.Create(&w).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create worker")
		}

		hub.Publish(events.Event{Collection: events.CollectionLabor, Action: events.ActionInsert, EntityID: w.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "labor",
			EntityID:    w.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Worker added: %s (%s)", w.Name, w.Role),
			Data:        w,
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.Status(fiber.StatusCreated).JSON(w)
	}
}

// PUT /api/labor/:id
func UpdateLaborHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var w models.Labor
		if err := db.First(&w, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Worker not found")
		}

		var body LaborRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validateLabor(&body); err != nil {
			return err
		}

		w.Name = body.Name
		w.PhotoURL = body.PhotoURL
		w.Phone = body.Phone
		w.Address = body.Address
		w.Role = body.Role
		w.SalaryType = models.SalaryType(body.SalaryType)
		w.SalaryAmount = body.SalaryAmount

		if err := db.Save(&w).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update worker")
		}

		hub.Publish(events.Event{Collection: events.CollectionLabor, Action: events.ActionUpdate, EntityID: w.ID})

		return c.JSON(w)
	}
}

// DELETE /api/labor/:id
// Blocked while expense or salary records reference the worker.
func DeleteLaborHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var w models.Labor
		if err := db.First(&w, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Worker not found")
		}

		var expenseCount, salaryCount int64
		db.Model(&models.LaborExpense{}).Where("labor_id = ?", w.ID).Count(&expenseCount)
		db.Model(&models.SalaryPayment{}).Where("labor_id = ?", w.ID).Count(&salaryCount)
		if expenseCount > 0 || salaryCount > 0 {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Worker has %d expense(s) and %d salary record(s); delete those first", expenseCount, salaryCount))
		}

		if err := db.Delete(&w).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete worker")
		}

		hub.Publish(events.Event{Collection: events.CollectionLabor, Action: events.ActionDelete, EntityID: w.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "labor",
			EntityID:    w.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Worker deleted: %s", w.Name),
			Data:        w,
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
