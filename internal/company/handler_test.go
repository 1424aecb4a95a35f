package company

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"greencare-backend/internal/database"
	"greencare-backend/internal/events"
	"greencare-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "company-test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newCompanyApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	hub := events.NewHub()

	app := fiber.New()
	app.Get("/api/companies", ListCompaniesHandler(db))
	app.Get("/api/companies/:id", GetCompanyHandler(db))
	app.Post("/api/companies", CreateCompanyHandler(db, hub))
	app.Put("/api/companies/:id", UpdateCompanyHandler(db, hub))
	app.Delete("/api/companies/:id", DeleteCompanyHandler(db, hub))
	return app, db
}

func listCompanies(t *testing.T, app *fiber.App, query string) []CompanyResponse {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, "/api/companies"+query, nil)
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	var results []CompanyResponse
	if err := json.NewDecoder(response.Body).Decode(&results); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return results
}

func TestCompanySearch(t *testing.T) {
	app, db := newCompanyApp(t)

	seed := []models.Company{
		{Name: "Acme Gardens", ContactPerson: "Priya Sharma", Email: "priya@acme.example", Location: "Pune"},
		{Name: "Birchwood Estates", ContactPerson: "Tom Hale", Email: "tom@birchwood.example", Location: "Mumbai"},
		{Name: "Cedar Homes", ContactPerson: "Ana Cruz", Email: "ana@cedar.example", Location: "Pune"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed company: %v", err)
		}
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "empty q returns all", query: "", want: 3},
		{name: "case-insensitive name", query: "?q=BIRCH", want: 1},
		{name: "substring of contact person", query: "?q=sharma", want: 1},
		{name: "location match", query: "?q=pune", want: 2},
		{name: "email match", query: "?q=cedar.example", want: 1},
		{name: "no match", query: "?q=zzz", want: 0},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			results := listCompanies(t, app, testCase.query)
			if len(results) != testCase.want {
				t.Fatalf("expected %d companies, got %d", testCase.want, len(results))
			}
		})
	}
}

func TestDeleteCompanyBlockedByPayments(t *testing.T) {
	app, db := newCompanyApp(t)

	company := models.Company{Name: "Acme Gardens"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	payment := models.Payment{CompanyID: company.ID, Amount: 500, Date: time.Now(), Status: models.PaymentStatusPaid}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	request := httptest.NewRequest(http.MethodDelete, "/api/companies/1", nil)
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform delete: %v", err)
	}
	if response.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 while payments exist, got %d", response.StatusCode)
	}

	var count int64
	db.Model(&models.Company{}).Count(&count)
	if count != 1 {
		t.Fatal("company must survive a blocked delete")
	}

	if err := db.Delete(&payment).Error; err != nil {
		t.Fatalf("remove payment: %v", err)
	}
	response, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/companies/1", nil), -1)
	if err != nil {
		t.Fatalf("perform second delete: %v", err)
	}
	if response.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 after dependents removed, got %d", response.StatusCode)
	}
}

func TestCompanyServicesRoundTrip(t *testing.T) {
	app, db := newCompanyApp(t)

	company := models.Company{Name: "Acme Gardens", Services: models.ServiceList{"mowing", "pruning"}}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}

	request := httptest.NewRequest(http.MethodGet, "/api/companies/1", nil)
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	var got CompanyResponse
	if err := json.NewDecoder(response.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Services) != 2 || got.Services[0] != "mowing" {
		t.Fatalf("expected stored service list back, got %#v", got.Services)
	}
}
