package company

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

type CompanyRequest struct {
	Name          string   `json:"name"`
	ContactPerson string   `json:"contact_person"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Address       string   `json:"address"`
	Location      string   `json:"location"`
	FixedSalary   float64  `json:"fixed_salary"`
	Services      []string `json:"services"`
}

type CompanyResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Location      string    `json:"location"`
	FixedSalary   float64   `json:"fixed_salary"`
	Services      []string  `json:"services"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toResponse(c *models.Company) CompanyResponse {
	services := c.Services
	if services == nil {
		services = models.ServiceList{}
	}
	return CompanyResponse{
		ID:            c.ID,
		Name:          c.Name,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		Location:      c.Location,
		FixedSalary:   c.FixedSalary,
		Services:      services,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func validate(body *CompanyRequest) error {
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	if body.FixedSalary < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "fixed_salary must be >= 0")
	}
	return nil
}

// GET /api/companies?q=...
// Case-insensitive substring search over name, contact person, email and
// location. Empty q returns the full list.
func ListCompaniesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.Company{}).Order("name asc")

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			term := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where(
				"lower(name) LIKE ? OR lower(contact_person) LIKE ? OR lower(email) LIKE ? OR lower(location) LIKE ?",
				term, term, term, term,
			)
		}

		var companies []models.Company
		if err := dbq.Find(&companies).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list companies")
		}

		resp := make([]CompanyResponse, 0, len(companies))
		for i := range companies {
			resp = append(resp, toResponse(&companies[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/companies/:id
func GetCompanyHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var company models.Company
		if err := db.First(&company, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Company not found")
		}
		return c.JSON(toResponse(&company))
	}
}

// POST /api/companies
func CreateCompanyHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate(&body); err != nil {
			return err
		}

		company := models.Company{
			Name:          body.Name,
			ContactPerson: body.ContactPerson,
			Email:         body.Email,
			Phone:         body.Phone,
			Address:       body.Address,
			Location:      body.Location,
			FixedSalary:   body.FixedSalary,
			Services:      models.ServiceList(body.Services),
		}
		if err := db.Create(&company).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create company")
		}

		hub.Publish(events.Event{Collection: events.CollectionCompanies, Action: events.ActionInsert, EntityID: company.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "company",
			EntityID:    company.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Company added: %s", company.Name),
			Data:        toResponse(&company),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(&company))
	}
}

// PUT /api/companies/:id
func UpdateCompanyHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var company models.Company
		if err := db.First(&company, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Company not found")
		}

		var body CompanyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := validate(&body); err != nil {
			return err
		}

		company.Name = body.Name
		company.ContactPerson = body.ContactPerson
		company.Email = body.Email
		company.Phone = body.Phone
		company.Address = body.Address
		company.Location = body.Location
		company.FixedSalary = body.FixedSalary
		company.Services = models.ServiceList(body.Services)

		if err := db.Save(&company).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update company")
		}

		hub.Publish(events.Event{Collection: events.CollectionCompanies, Action: events.ActionUpdate, EntityID: company.ID})

		return c.JSON(toResponse(&company))
	}
}

// DELETE /api/companies/:id
// Blocked while dependent payments or invoices exist: deleting a client
// must not orphan its financial records.
func DeleteCompanyHandler(db *gorm.DB, hub *events.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var company models.Company
		if err := db.First(&company, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Company not found")
		}

		var paymentCount, invoiceCount int64
		db.Model(&models.Payment{}).Where("company_id = ?", company.ID).Count(&paymentCount)
		db.Model(&models.Invoice{}).Where("company_id = ?", company.ID).Count(&invoiceCount)
		if paymentCount > 0 || invoiceCount > 0 {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Company has %d payment(s) and %d invoice(s); delete those first", paymentCount, invoiceCount))
		}

		if err := db.Delete(&company).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete company")
		}

		hub.Publish(events.Event{Collection: events.CollectionCompanies, Action: events.ActionDelete, EntityID: company.ID})

		userID, userName := auth.CurrentUser(c, db)
		if err := audit.WriteLog(db, audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "company",
			EntityID:    company.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Company deleted: %s", company.Name),
			Data:        toResponse(&company),
		}); err != nil {
			log.Printf("audit log failed: %v", err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
