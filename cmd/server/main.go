package main

import (
	"context"
	"log"
	"strings"

	"greencare-backend/internal/audit"
	"greencare-backend/internal/auth"
	"greencare-backend/internal/company"
	"greencare-backend/internal/config"
	"greencare-backend/internal/dashboard"
	"greencare-backend/internal/database"
	"greencare-backend/internal/events"
	"greencare-backend/internal/invoice"
	"greencare-backend/internal/labor"
	"greencare-backend/internal/payment"
	"greencare-backend/internal/project"
	"greencare-backend/internal/report"
	"greencare-backend/internal/settings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("database open failed: ", err)
	}

	hub := events.NewHub()

	if cfg.AMQPURL != "" {
		mirror, err := events.NewAMQPPublisher(cfg.AMQPURL, "greencare.events")
		if err != nil {
			log.Fatal("amqp connect failed: ", err)
		}
		defer mirror.Close()
		hub.SetMirror(mirror)
		log.Println("AMQP event mirror enabled")
	}

	refresher := dashboard.NewRefresher(db, hub)
	if err := refresher.Start(context.Background()); err != nil {
		log.Fatal("dashboard refresher failed: ", err)
	}
	defer refresher.Stop()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(db, cfg.JWTSecret))

	// Everything else requires a token
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Dashboard
	protected.Get("/dashboard/stats", dashboard.StatsHandler(db, refresher))

	// Companies
	protected.Get("/companies", company.ListCompaniesHandler(db))
	protected.Get("/companies/:id", company.GetCompanyHandler(db))
	protected.Post("/companies", company.CreateCompanyHandler(db, hub))
	protected.Put("/companies/:id", company.UpdateCompanyHandler(db, hub))
	protected.Delete("/companies/:id", company.DeleteCompanyHandler(db, hub))

	// Payments
	protected.Get("/payments", payment.ListPaymentsHandler(db))
	protected.Post("/payments", payment.CreatePaymentHandler(db, hub))
	protected.Put("/payments/:id", payment.UpdatePaymentHandler(db, hub))
	protected.Delete("/payments/:id", payment.DeletePaymentHandler(db, hub))

	// Labor & payroll
	protected.Get("/labor", labor.ListLaborHandler(db))
	protected.Post("/labor", labor.CreateLaborHandler(db, hub))
	protected.Put("/labor/:id", labor.UpdateLaborHandler(db, hub))
	protected.Delete("/labor/:id", labor.DeleteLaborHandler(db, hub))
	protected.Put("/labor/:id/salary", labor.UpsertSalaryPaymentHandler(db, hub))
	protected.Get("/labor/:id/salary", labor.ListSalaryPaymentsHandler(db))
	protected.Get("/labor-expenses", labor.ListLaborExpensesHandler(db))
	protected.Post("/labor-expenses", labor.CreateLaborExpenseHandler(db, hub))
	protected.Delete("/labor-expenses/:id", labor.DeleteLaborExpenseHandler(db, hub))

	// Side projects
	protected.Get("/projects", project.ListProjectsHandler(db))
	protected.Get("/projects/:id", project.GetProjectHandler(db))
	protected.Post("/projects", project.CreateProjectHandler(db, hub))
	protected.Put("/projects/:id", project.UpdateProjectHandler(db, hub))
	protected.Delete("/projects/:id", project.DeleteProjectHandler(db, hub))
	protected.Get("/project-expenses", project.ListProjectExpensesHandler(db))
	protected.Post("/project-expenses", project.CreateProjectExpenseHandler(db, hub))
	protected.Delete("/project-expenses/:id", project.DeleteProjectExpenseHandler(db, hub))

	// Invoices
	protected.Get("/invoices", invoice.ListInvoicesHandler(db))
	protected.Get("/invoices/:id", invoice.GetInvoiceHandler(db))
	protected.Get("/invoices/:id/pdf", invoice.InvoicePDFHandler(db))
	protected.Post("/invoices", invoice.CreateInvoiceHandler(db, hub))
	protected.Put("/invoices/:id", invoice.UpdateInvoiceHandler(db, hub))
	protected.Delete("/invoices/:id", invoice.DeleteInvoiceHandler(db, hub))

	// Settings
	protected.Get("/settings", settings.GetSettingsHandler(db))
	protected.Put("/settings", settings.UpdateSettingsHandler(db, hub))

	// Reports
	protected.Get("/reports/monthly", report.MonthlyReportHandler(db))
	protected.Get("/reports/export", report.ExportReportHandler(db))

	// Change notifications (SSE)
	protected.Get("/events", events.StreamHandler(hub))

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(db))

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
