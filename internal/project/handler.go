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

type ProjectRequest struct {
	Name      string  `json:"name"`
	Location  string  `json:"location"`
	Cost      float64 `json:"cost"`
	Profit    float64 `json:"profit"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"` // optional
	Status    string  `json:"status"`
}

type ProjectResponse struct {
	ID            uint                 `json:"id"`
	Name          string               `json:"name"`
	Location      string               `json:"location"`
	Cost          float64              `json:"cost"`
	Profit        float64              `json:"profit"`
	StartDate     string               `json:"start_date"`
	EndDate       *string              `json:"end_date"`
	Status        models.ProjectStatus `json:"status"`
	TotalExpenses float64              `json:"total_expenses"`
	CreatedAt     time.Time            `json:"created_at"`
}

func toResponse(p *models.SideProject, totalExpenses float64) ProjectResponse {
	var end *string
	if p.EndDate != nil {
		s := p.EndDate.Format("2006-01-02")
		end = &s
	}
	return ProjectResponse{
		ID:            p.ID,
		Name:          p.Name,
		Location:      p.Location,
		Cost:          p.Cost,
		Profit:        p.Profit,
		StartDate:     p.StartDate.Format("2006-01-02"),
		EndDate:       end,
		Status:        p.Status,
		TotalExpenses: totalExpenses,
		CreatedAt:     p.CreatedAt,
	}
}

func validStatus(s string) bool {
	switch models.ProjectStatus(s) {
	case models.ProjectStatusActive, models.ProjectStatusCompleted, models.ProjectStatusCancelled:
		return true
	}
	return false
}

func parseBody(c *fiber.Ctx) (*ProjectRequest, time.Time, *time.Time, error) {
	var body ProjectRequest
	if err := c.BodyParser(&body); err != nil {
		return nil, time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return nil, time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if body.Cost < 0 || body.Profit < 0 {
		return nil, time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "cost and profit must be >= 0")
	}
	if !validStatus(body.Status) {
		return nil, time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "status must be active, completed or cancelled")
	}
	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		return nil, time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "start_date must be 'YYYY-MM-DD'")
	}
	var end *time.Time
	if body.EndDate != "" {
		e, err := time.Parse("2006-01-02", body.EndDate)
		if err != nil {
			return nil, time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "end_date must be 'YYYY-MM-DD'")
		}
		if e.Before(start) {
			return nil, time.Time{}, nil, fiber.NewError(fiber.StatusBadRequest, "end_date must not be before start_date")
		}
		end = &e
	}
	return &body, start, end, nil
}

func expenseTotals(db *gorm.DB) (map[uint]float64, error) {
	type row struct {
		ProjectID uint    `gorm:"column:project_id"`
		Total     float64 `gorm:"column:total"`
	}
	var rows []row
	if err := db.Model(&models.ProjectExpense{}).
		Select("project_id, SUM(amount) as total").
		Group("project_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	totals := make(map[uint]float64, len(rows))
	for _, r := range rows {
		totals[r.ProjectID] = r.Total
	}
	return totals, nil
}

// GET /api/projects?q=...&status=...
func ListProjectsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.SideProject{}).Order("start_date desc, id desc")

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			term := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("lower(name) LIKE ? OR lower(location) LIKE ?", term, term)
		}
		if status := c.Query("status"); status != "" {
			if !validStatus(status) {
				return fiber.NewError(fiber.StatusBadRequest, "status is invalid")
			}
			dbq = dbq.Where("status = ?", status)
		}

		var projects []models.SideProject
		if err := dbq.Find(&projects).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list projects")
		}

		totals, err := expenseTotals(db)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load expense totals")
		}

		resp := make([]ProjectResponse, 0, len(projects))
		for i := range projects {
			resp = append(resp, toResponse(&projects[i], totals[projects[i].ID]))
		}
		return c.JSON(resp)
	}
}

// GET /api/projects/:id
func GetProjectHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.SideProject
		if err := db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Project not found")
		}

		var total float64
		if err := db.Model(&models.ProjectExpense{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("project_id = ?", p.ID).
			Scan(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load expense total")
		}

		return c.JSON(toResponse(&p, total))
	}
}

// POST /api/projects
func CreateProjectHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, start, end, err := parseBody(c)
		if err != nil {
			return err
		}

		p := models.SideProject{
			Name:      body.Name,
			Location:  body.Location,
			Cost:      body.Cost,
			Profit:    body.Profit,
			StartDate: start,
			EndDate:   end,
			Status:    models.ProjectStatus(body.Status),
		}
		if err := db.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create project")
		}

		hub.Publish(events.Event{Collection: events.CollectionSideProjects, Action: events.ActionInsert, EntityID: p.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "side_project",
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Project added: %s", p.Name),
			Data:        toResponse(&p, 0),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&p, 0))
	}
}

// PUT /api/projects/:id
func UpdateProjectHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.SideProject
		if err := db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Project not found")
		}

		body, start, end, err := parseBody(c)
		if err != nil {
			return err
		}

		p.Name = body.Name
		p.Location = body.Location
		p.Cost = body.Cost
		p.Profit = body.Profit
		p.StartDate = start
		p.EndDate = end
		p.Status = models.ProjectStatus(body.Status)

		if err := db.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update project")
		}

		hub.Publish(events.Event{Collection: events.CollectionSideProjects, Action: events.ActionUpdate, EntityID: p.ID})

		var total float64
		db.Model(&models.ProjectExpense{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("project_id = ?", p.ID).
			Scan(&total)

		return c.JSON(toResponse(&p, total))
	}
}

// DELETE /api/projects/:id
// Blocked while expense rows reference the project.
func DeleteProjectHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.SideProject
		if err := db.First(&p, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Project not found")
		}

		var expenseCount int64
		db.Model(&models.ProjectExpense{}).Where("project_id = ?", p.ID).Count(&expenseCount)
		if expenseCount > 0 {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Project has %d expense(s); delete those first", expenseCount))
		}

		if err := db.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete project")
		}

		hub.Publish(events.Event{Collection: events.CollectionSideProjects, Action: events.ActionDelete, EntityID: p.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "side_project",
			EntityID:    p.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Project deleted: %s", p.Name),
			Data:        toResponse(&p, 0),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
