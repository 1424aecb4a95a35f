package dashboard

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/dashboard/stats
// Serves the refresher's cache when available, falling back to a direct
// computation so the endpoint works even without a running refresher.
func StatsHandler(db *gorm.DB, r *Refresher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r != nil {
			if stats, ok := r.Stats(); ok {
				return c.JSON(stats)
			}
		}

		snap, err := LoadSnapshot(c.Context(), db)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load dashboard stats")
		}
		return c.JSON(ComputeStats(snap, time.Now()))
	}
}
