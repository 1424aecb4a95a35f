package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"greencare-backend/internal/database"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()

	path := filepath.Join(t.TempDir(), "auth-test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	app := fiber.New()
	app.Post("/api/auth/register-admin", RegisterAdminHandler(db))
	app.Post("/api/auth/login", LoginHandler(db, testSecret))

	protected := app.Group("")
	protected.Use(JWTMiddleware(testSecret))
	protected.Get("/api/auth/me", MeHandler(db))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	return response
}

func TestRegisterAdminOnlyOnce(t *testing.T) {
	app := newAuthApp(t)

	first := postJSON(t, app, "/api/auth/register-admin", RegisterAdminRequest{
		Name: "Admin", Email: "admin@greencare.example", Password: "topsecret123",
	})
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", first.StatusCode)
	}

	second := postJSON(t, app, "/api/auth/register-admin", RegisterAdminRequest{
		Name: "Intruder", Email: "intruder@greencare.example", Password: "whatever",
	})
	if second.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for a second admin, got %d", second.StatusCode)
	}
}

func TestLoginAndMe(t *testing.T) {
	app := newAuthApp(t)

	postJSON(t, app, "/api/auth/register-admin", RegisterAdminRequest{
		Name: "Admin", Email: "admin@greencare.example", Password: "topsecret123",
	})

	badLogin := postJSON(t, app, "/api/auth/login", LoginRequest{
		Email: "admin@greencare.example", Password: "wrong",
	})
	if badLogin.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", badLogin.StatusCode)
	}

	login := postJSON(t, app, "/api/auth/login", LoginRequest{
		Email: "Admin@GreenCare.example", Password: "topsecret123",
	})
	if login.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", login.StatusCode)
	}

	var loginBody struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(login.Body).Decode(&loginBody); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if loginBody.Token == "" {
		t.Fatal("expected a token in the login response")
	}

	meRequest := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	meRequest.Header.Set("Authorization", "Bearer "+loginBody.Token)
	meResponse, err := app.Test(meRequest, -1)
	if err != nil {
		t.Fatalf("perform me request: %v", err)
	}
	if meResponse.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", meResponse.StatusCode)
	}

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(meResponse.Body).Decode(&me); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if me.Email != "admin@greencare.example" || me.Role != "admin" {
		t.Fatalf("unexpected identity: %+v", me)
	}
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	app := newAuthApp(t)

	request := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("perform request: %v", err)
	}
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", response.StatusCode)
	}
}
