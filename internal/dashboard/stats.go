package dashboard

import (
	"context"
	"time"

	"greencare-backend/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Snapshot is a full in-memory copy of the watched collections, taken
// as one unit so the derived figures are mutually consistent.
type Snapshot struct {
	Companies       []models.Company
	Payments        []models.Payment
	Labor           []models.Labor
	LaborExpenses   []models.LaborExpense
	SalaryPayments  []models.SalaryPayment
	SideProjects    []models.SideProject
	ProjectExpenses []models.ProjectExpense
	Invoices        []models.Invoice
}

type Stats struct {
	TotalIncome       float64   `json:"total_income"`
	WeeklyIncome      float64   `json:"weekly_income"`
	MonthlyIncome     float64   `json:"monthly_income"`
	TotalExpenses     float64   `json:"total_expenses"`
	PendingSalaries   float64   `json:"pending_salaries"`
	PermanentClients  int       `json:"permanent_clients"`
	ActiveWorkers     int       `json:"active_workers"`
	ActiveProjects    int       `json:"active_projects"`
	CompletedProjects int       `json:"completed_projects"`
	PaidInvoices      int       `json:"paid_invoices"`
	UnpaidInvoices    int       `json:"unpaid_invoices"`
	ComputedAt        time.Time `json:"computed_at"`
}

// ComputeStats derives every dashboard figure from a snapshot. Pure:
// same snapshot and clock in, same stats out.
//
// Income counts paid payments only. The weekly and monthly windows are
// trailing 7 and 30 days from now on the wall clock, not calendar
// aligned. Pending salaries sum the pending salary-payment rows, i.e.
// the outstanding liability, not the projected wage bill.
func ComputeStats(snap Snapshot, now time.Time) Stats {
	stats := Stats{ComputedAt: now}

	weekStart := now.AddDate(0, 0, -7)
	monthStart := now.AddDate(0, 0, -30)

	for _, p := range snap.Payments {
		if p.Status != models.PaymentStatusPaid {
			continue
		}
		stats.TotalIncome += p.Amount
		if p.Date.After(weekStart) && !p.Date.After(now) {
			stats.WeeklyIncome += p.Amount
		}
		if p.Date.After(monthStart) && !p.Date.After(now) {
			stats.MonthlyIncome += p.Amount
		}
	}

	for _, e := range snap.LaborExpenses {
		stats.TotalExpenses += e.Amount
	}
	for _, e := range snap.ProjectExpenses {
		stats.TotalExpenses += e.Amount
	}

	for _, sp := range snap.SalaryPayments {
		if sp.Status == models.SalaryStatusPending {
			stats.PendingSalaries += sp.Amount
		}
	}

	stats.PermanentClients = len(snap.Companies)
	stats.ActiveWorkers = len(snap.Labor)

	for _, p := range snap.SideProjects {
		switch p.Status {
		case models.ProjectStatusActive:
			stats.ActiveProjects++
		case models.ProjectStatusCompleted:
			stats.CompletedProjects++
		}
	}

	for _, inv := range snap.Invoices {
		if inv.Status == models.InvoiceStatusPaid {
			stats.PaidInvoices++
		} else {
			stats.UnpaidInvoices++
		}
	}

	return stats
}

// LoadSnapshot fetches all watched collections concurrently. Any single
// failure aborts the whole load; the dashboard never shows a mix of
// fresh and missing figures.
func LoadSnapshot(ctx context.Context, db *gorm.DB) (Snapshot, error) {
	var snap Snapshot

	g, ctx := errgroup.WithContext(ctx)
	fetch := func(dest interface{}) func() error {
		return func() error {
			return db.WithContext(ctx).Find(dest).Error
		}
	}

	g.Go(fetch(&snap.Companies))
	g.Go(fetch(&snap.Payments))
	g.Go(fetch(&snap.Labor))
	g.Go(fetch(&snap.LaborExpenses))
	g.Go(fetch(&snap.SalaryPayments))
	g.Go(fetch(&snap.SideProjects))
	g.Go(fetch(&snap.ProjectExpenses))
	g.Go(fetch(&snap.Invoices))

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
