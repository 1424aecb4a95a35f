package settings

import (
	"strings"

	"greencare-backend/internal/events"
	"greencare-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SettingsRequest struct {
	CompanyName    string  `json:"company_name"`
	CompanyEmail   string  `json:"company_email"`
	CompanyPhone   string  `json:"company_phone"`
	CompanyAddress string  `json:"company_address"`
	Currency       string  `json:"currency"`
	TaxRate        float64 `json:"tax_rate"`
	InvoicePrefix  string  `json:"invoice_prefix"`
}

type SettingsResponse struct {
	CompanyName    string  `json:"company_name"`
	CompanyEmail   string  `json:"company_email"`
	CompanyPhone   string  `json:"company_phone"`
	CompanyAddress string  `json:"company_address"`
	Currency       string  `json:"currency"`
	TaxRate        float64 `json:"tax_rate"`
	InvoicePrefix  string  `json:"invoice_prefix"`
}

func toResponse(s *models.Settings) SettingsResponse {
	return SettingsResponse{
		CompanyName:    s.CompanyName,
		CompanyEmail:   s.CompanyEmail,
		CompanyPhone:   s.CompanyPhone,
		CompanyAddress: s.CompanyAddress,
		Currency:       s.Currency,
		TaxRate:        s.TaxRate,
		InvoicePrefix:  s.InvoicePrefix,
	}
}

// Get returns the singleton settings row, creating it with defaults on
// first access.
func Get(db *gorm.DB) (*models.Settings, error) {
	var s models.Settings
	err := db.First(&s).Error
	if err == nil {
		return &s, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	s = models.Settings{
		CompanyName:   "GreenCare Agency",
		Currency:      "USD",
		TaxRate:       0,
		InvoicePrefix: "INV",
	}
	if err := db.Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// GET /api/settings
func GetSettingsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := Get(db)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load settings")
		}
		return c.JSON(toResponse(s))
	}
}

// PUT /api/settings
func UpdateSettingsHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.CompanyName = strings.TrimSpace(body.CompanyName)
		body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
		body.InvoicePrefix = strings.ToUpper(strings.TrimSpace(body.InvoicePrefix))

		if body.CompanyName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "company_name is required")
		}
		if body.Currency == "" {
			return fiber.NewError(fiber.StatusBadRequest, "currency is required")
		}
		if body.TaxRate < 0 || body.TaxRate > 100 {
			return fiber.NewError(fiber.StatusBadRequest, "tax_rate must be between 0 and 100")
		}
		if body.InvoicePrefix == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invoice_prefix is required")
		}

		s, err := Get(db)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load settings")
		}

		s.CompanyName = body.CompanyName
		s.CompanyEmail = body.CompanyEmail
		s.CompanyPhone = body.CompanyPhone
		s.CompanyAddress = body.CompanyAddress
		s.Currency = body.Currency
		s.TaxRate = body.TaxRate
		s.InvoicePrefix = body.InvoicePrefix

		if err := db.Save(s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update settings")
		}

		hub.Publish(events.Event{Collection: events.CollectionSettings, Action: events.ActionUpdate, EntityID: s.ID})

		return c.JSON(toResponse(s))
	}
}
