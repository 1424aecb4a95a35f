package invoice

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"greencare-backend/internal/events"
	"greencare-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	hub := events.NewHub()

	app := fiber.New()
	app.Get("/api/invoices", ListInvoicesHandler(db))
	app.Get("/api/invoices/:id", GetInvoiceHandler(db))
	app.Post("/api/invoices", CreateInvoiceHandler(db, hub))
	app.Put("/api/invoices/:id", UpdateInvoiceHandler(db, hub))
	app.Delete("/api/invoices/:id", DeleteInvoiceHandler(db, hub))
	return app, db
}

func seedCompany(t *testing.T, db *gorm.DB, name string) models.Company {
	t.Helper()
	company := models.Company{Name: name}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return company
}

func postInvoice(t *testing.T, app *fiber.App, body InvoiceRequest) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	return response
}

func TestCreateInvoiceComputesAmountServerSide(t *testing.T) {
	app, db := newTestApp(t)
	company := seedCompany(t, db, "Acme Gardens")

	response := postInvoice(t, app, InvoiceRequest{
		CompanyID: company.ID,
		Items: []InvoiceItemRequest{
			{Description: "Lawn maintenance", Quantity: 4, Rate: 250},
			{Description: "Hedge trimming", Quantity: 2, Rate: 375.50},
		},
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", response.StatusCode)
	}

	var created InvoiceResponse
	if err := json.NewDecoder(response.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	want := 4*250 + 2*375.50
	if created.Amount != want {
		t.Fatalf("expected amount %v, got %v", want, created.Amount)
	}
	if created.InvoiceNumber != "INV-000001" {
		t.Fatalf("expected first sequence number, got %q", created.InvoiceNumber)
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(created.Items))
	}
}

func TestCreateInvoiceRejectsEmptyItems(t *testing.T) {
	app, db := newTestApp(t)
	company := seedCompany(t, db, "Acme Gardens")

	response := postInvoice(t, app, InvoiceRequest{CompanyID: company.ID})
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero items, got %d", response.StatusCode)
	}
}

func TestCreateInvoiceRejectsBadLine(t *testing.T) {
	app, db := newTestApp(t)
	company := seedCompany(t, db, "Acme Gardens")

	tests := []struct {
		name string
		item InvoiceItemRequest
	}{
		{name: "missing description", item: InvoiceItemRequest{Quantity: 1, Rate: 10}},
		{name: "zero quantity", item: InvoiceItemRequest{Description: "Mulch", Quantity: 0, Rate: 10}},
		{name: "negative rate", item: InvoiceItemRequest{Description: "Mulch", Quantity: 1, Rate: -5}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			response := postInvoice(t, app, InvoiceRequest{
				CompanyID: company.ID,
				Items:     []InvoiceItemRequest{testCase.item},
			})
			if response.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", response.StatusCode)
			}
		})
	}
}

func TestUpdateInvoiceReplacesItemsAndKeepsNumber(t *testing.T) {
	app, db := newTestApp(t)
	company := seedCompany(t, db, "Acme Gardens")

	response := postInvoice(t, app, InvoiceRequest{
		CompanyID: company.ID,
		Items: []InvoiceItemRequest{
			{Description: "Lawn maintenance", Quantity: 1, Rate: 100},
		},
	})
	var created InvoiceResponse
	if err := json.NewDecoder(response.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	payload, _ := json.Marshal(InvoiceRequest{
		CompanyID: company.ID,
		Status:    "sent",
		Items: []InvoiceItemRequest{
			{Description: "Tree surgery", Quantity: 3, Rate: 500},
		},
	})
	request := httptest.NewRequest(http.MethodPut, "/api/invoices/1", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	updateResponse, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform update: %v", err)
	}
	if updateResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", updateResponse.StatusCode)
	}

	var updated InvoiceResponse
	if err := json.NewDecoder(updateResponse.Body).Decode(&updated); err != nil {
		t.Fatalf("decode update response: %v", err)
	}
	if updated.InvoiceNumber != created.InvoiceNumber {
		t.Fatalf("invoice number must not change on update: %q -> %q", created.InvoiceNumber, updated.InvoiceNumber)
	}
	if updated.Amount != 1500 {
		t.Fatalf("expected recomputed amount 1500, got %v", updated.Amount)
	}
	if len(updated.Items) != 1 || updated.Items[0].Description != "Tree surgery" {
		t.Fatalf("expected replaced item set, got %#v", updated.Items)
	}

	var itemCount int64
	db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", created.ID).Count(&itemCount)
	if itemCount != 1 {
		t.Fatalf("expected 1 stored item after replacement, got %d", itemCount)
	}
}

func TestInvoiceSearchMatchesNumberAndCompany(t *testing.T) {
	app, db := newTestApp(t)
	acme := seedCompany(t, db, "Acme Gardens")
	birch := seedCompany(t, db, "Birchwood Estates")

	postInvoice(t, app, InvoiceRequest{
		CompanyID: acme.ID,
		Items:     []InvoiceItemRequest{{Description: "Mowing", Quantity: 1, Rate: 100}},
	})
	postInvoice(t, app, InvoiceRequest{
		CompanyID: birch.ID,
		Items:     []InvoiceItemRequest{{Description: "Pruning", Quantity: 1, Rate: 200}},
	})

	request := httptest.NewRequest(http.MethodGet, "/api/invoices?q=birch", nil)
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform search: %v", err)
	}
	var results []InvoiceResponse
	if err := json.NewDecoder(response.Body).Decode(&results); err != nil {
		t.Fatalf("decode search response: %v", err)
	}
	if len(results) != 1 || results[0].CompanyName != "Birchwood Estates" {
		t.Fatalf("expected the Birchwood invoice only, got %#v", results)
	}

	request = httptest.NewRequest(http.MethodGet, "/api/invoices?q=INV-000001", nil)
	response, err = app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform number search: %v", err)
	}
	if err := json.NewDecoder(response.Body).Decode(&results); err != nil {
		t.Fatalf("decode number search response: %v", err)
	}
	if len(results) != 1 || results[0].InvoiceNumber != "INV-000001" {
		t.Fatalf("expected match on invoice number, got %#v", results)
	}
}
