package settings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"greencare-backend/internal/database"
	"greencare-backend/internal/events"
	"greencare-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSettingsApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings-test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	hub := events.NewHub()
	app := fiber.New()
	app.Get("/api/settings", GetSettingsHandler(db))
	app.Put("/api/settings", UpdateSettingsHandler(db, hub))
	return app, db
}

func TestSettingsDefaultsOnFirstRead(t *testing.T) {
	app, db := newSettingsApp(t)

	request := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}

	var got SettingsResponse
	if err := json.NewDecoder(response.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.CompanyName != "GreenCare Agency" || got.Currency != "USD" || got.InvoicePrefix != "INV" {
		t.Fatalf("unexpected defaults: %+v", got)
	}

	var count int64
	db.Model(&models.Settings{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single settings row, got %d", count)
	}
}

func TestSettingsUpdatePersists(t *testing.T) {
	app, db := newSettingsApp(t)

	payload, _ := json.Marshal(SettingsRequest{
		CompanyName:   "GreenCare Agency Pvt Ltd",
		Currency:      "inr",
		TaxRate:       18,
		InvoicePrefix: "gc",
	})
	request := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}

	var got SettingsResponse
	if err := json.NewDecoder(response.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Currency != "INR" || got.InvoicePrefix != "GC" {
		t.Fatalf("expected uppercased currency and prefix, got %+v", got)
	}

	saved, err := Get(db)
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if saved.TaxRate != 18 || saved.CompanyName != "GreenCare Agency Pvt Ltd" {
		t.Fatalf("update did not persist: %+v", saved)
	}

	var count int64
	db.Model(&models.Settings{}).Count(&count)
	if count != 1 {
		t.Fatalf("update must not create extra rows, got %d", count)
	}
}

func TestSettingsUpdateValidation(t *testing.T) {
	app, _ := newSettingsApp(t)

	tests := []struct {
		name string
		body SettingsRequest
	}{
		{name: "missing company name", body: SettingsRequest{Currency: "USD", InvoicePrefix: "INV"}},
		{name: "missing currency", body: SettingsRequest{CompanyName: "X", InvoicePrefix: "INV"}},
		{name: "tax rate out of range", body: SettingsRequest{CompanyName: "X", Currency: "USD", TaxRate: 120, InvoicePrefix: "INV"}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			payload, _ := json.Marshal(testCase.body)
			request := httptest.NewRequest(http.MethodPut, "/api/settings", bytes.NewReader(payload))
			request.Header.Set("Content-Type", "application/json")
			response, err := app.Test(request, -1)
			if err != nil {
				t.Fatalf("perform request: %v", err)
			}
			if response.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", response.StatusCode)
			}
		})
	}
}
