package project

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

type ProjectExpenseRequest struct {
	ProjectID   uint    `json:"project_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

type ProjectExpenseResponse struct {
	ID          uint    `json:"id"`
	ProjectID   uint    `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
}

func expenseToResponse(e *models.ProjectExpense) ProjectExpenseResponse {
	return ProjectExpenseResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		ProjectName: e.Project.Name,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date.Format("2006-01-02"),
	}
}

// GET /api/project-expenses?project_id=...
func ListProjectExpensesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.ProjectExpense{}).Preload("Project").Order("date desc, id desc")

		if pidStr := c.Query("project_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "project_id is invalid")
			}
			dbq = dbq.Where("project_id = ?", pid)
		}

		var rows []models.ProjectExpense
		if err := dbq.Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list project expenses")
		}

		resp := make([]ProjectExpenseResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, expenseToResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/project-expenses
func CreateProjectExpenseHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProjectExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Description = strings.TrimSpace(body.Description)
		if body.ProjectID == 0 || body.Description == "" {
			return fiber.NewError(fiber.StatusBadRequest, "project_id and description are required")
		}
		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be > 0")
		}
		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
		}

		var proj models.SideProject
		if err := db.First(&proj, "id = ?", body.ProjectID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Project not found")
		}

		e := models.ProjectExpense{
			ProjectID:   body.ProjectID,
			Description: body.Description,
			Amount:      body.Amount,
			Date:        d,
		}
		if err := db.Create(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record project expense")
		}
		e.Project = proj

		hub.Publish(events.Event{Collection: events.CollectionProjectExpenses, Action: events.ActionInsert, EntityID: e.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "project_expense",
			EntityID:    e.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Project expense: %s - %.2f (%s)", proj.Name, e.Amount, e.Description),
			Data:        expenseToResponse(&e),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.Status(fiber.StatusCreated).JSON(expenseToResponse(&e))
	}
}

// DELETE /api/project-expenses/:id
func DeleteProjectExpenseHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var e models.ProjectExpense
		if err := db.Preload("Project").First(&e, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Project expense not found")
		}

		if err := db.Delete(&e).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete project expense")
		}

		hub.Publish(events.Event{Collection: events.CollectionProjectExpenses, Action: events.ActionDelete, EntityID: e.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "project_expense",
			EntityID:    e.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Project expense deleted: %.2f (%s)", e.Amount, e.Description),
			Data:        expenseToResponse(&e),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
