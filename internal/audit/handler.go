package audit

import (
	"fmt"

	"greencare-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/audit-logs?entity_type=...&limit=...
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := 100
		if limStr := c.Query("limit"); limStr != "" {
			if _, err := fmt.Sscan(limStr, &limit); err != nil || limit < 1 || limit > 1000 {
				return fiber.NewError(fiber.StatusBadRequest, "limit must be 1-1000")
			}
		}

		dbq := db.Model(&models.AuditLog{}).Order("created_at desc, id desc").Limit(limit)
		if et := c.Query("entity_type"); et != "" {
			dbq = dbq.Where("entity_type = ?", et)
		}

		var logs []models.AuditLog
		if err := dbq.Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}
		return c.JSON(logs)
	}
}
