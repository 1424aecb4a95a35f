package dashboard

import (
	"testing"
	"time"

	"greencare-backend/internal/models"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return parsed
}

func TestComputeStatsIncomeWindows(t *testing.T) {
	now := day(t, "2026-08-28")

	snap := Snapshot{
		Payments: []models.Payment{
			{Amount: 100, Date: day(t, "2026-08-27"), Status: models.PaymentStatusPaid},  // in week
			{Amount: 200, Date: day(t, "2026-08-10"), Status: models.PaymentStatusPaid},  // in month only
			{Amount: 400, Date: day(t, "2026-01-05"), Status: models.PaymentStatusPaid},  // older
			{Amount: 999, Date: day(t, "2026-08-27"), Status: models.PaymentStatusPending}, // never counted
		},
	}

	stats := ComputeStats(snap, now)

	if stats.TotalIncome != 700 {
		t.Fatalf("expected total income 700, got %v", stats.TotalIncome)
	}
	if stats.WeeklyIncome != 100 {
		t.Fatalf("expected weekly income 100, got %v", stats.WeeklyIncome)
	}
	if stats.MonthlyIncome != 300 {
		t.Fatalf("expected monthly income 300, got %v", stats.MonthlyIncome)
	}
}

func TestComputeStatsIncomeDeltaOnNewPayment(t *testing.T) {
	now := day(t, "2026-08-28")
	base := Snapshot{
		Payments: []models.Payment{
			{Amount: 100, Date: day(t, "2026-08-20"), Status: models.PaymentStatusPaid},
		},
	}

	before := ComputeStats(base, now)

	withNew := base
	withNew.Payments = append(withNew.Payments, models.Payment{
		Amount: 50, Date: day(t, "2026-08-28"), Status: models.PaymentStatusPaid,
	})
	after := ComputeStats(withNew, now)

	if after.TotalIncome-before.TotalIncome != 50 {
		t.Fatalf("expected total income to rise by exactly the payment amount, got %v -> %v",
			before.TotalIncome, after.TotalIncome)
	}
}

func TestComputeStatsWindowMonotonicity(t *testing.T) {
	now := day(t, "2026-08-28")
	snap := Snapshot{
		Payments: []models.Payment{
			{Amount: 10, Date: day(t, "2026-08-28"), Status: models.PaymentStatusPaid},
			{Amount: 20, Date: day(t, "2026-08-22"), Status: models.PaymentStatusPaid},
			{Amount: 30, Date: day(t, "2026-08-01"), Status: models.PaymentStatusPaid},
			{Amount: 40, Date: day(t, "2025-12-31"), Status: models.PaymentStatusPaid},
		},
	}

	stats := ComputeStats(snap, now)

	if stats.WeeklyIncome > stats.MonthlyIncome {
		t.Fatalf("weekly income %v exceeds monthly income %v", stats.WeeklyIncome, stats.MonthlyIncome)
	}
	if stats.MonthlyIncome > stats.TotalIncome {
		t.Fatalf("monthly income %v exceeds total income %v", stats.MonthlyIncome, stats.TotalIncome)
	}
}

func TestComputeStatsCountsAndLiabilities(t *testing.T) {
	now := day(t, "2026-08-28")

	snap := Snapshot{
		Companies: []models.Company{{Name: "Acme"}, {Name: "Birchwood"}},
		Labor:     []models.Labor{{Name: "Ravi"}},
		SalaryPayments: []models.SalaryPayment{
			{Amount: 15000, Status: models.SalaryStatusPending},
			{Amount: 12000, Status: models.SalaryStatusPending},
			{Amount: 9000, Status: models.SalaryStatusPaid},
		},
		LaborExpenses:   []models.LaborExpense{{Amount: 300}},
		ProjectExpenses: []models.ProjectExpense{{Amount: 700}},
		SideProjects: []models.SideProject{
			{Status: models.ProjectStatusActive},
			{Status: models.ProjectStatusCompleted},
			{Status: models.ProjectStatusCompleted},
			{Status: models.ProjectStatusCancelled},
		},
		Invoices: []models.Invoice{
			{Status: models.InvoiceStatusPaid},
			{Status: models.InvoiceStatusSent},
			{Status: models.InvoiceStatusDraft},
		},
	}

	stats := ComputeStats(snap, now)

	if stats.PermanentClients != 2 || stats.ActiveWorkers != 1 {
		t.Fatalf("unexpected client/worker counts: %+v", stats)
	}
	if stats.PendingSalaries != 27000 {
		t.Fatalf("pending salaries must sum pending rows only, got %v", stats.PendingSalaries)
	}
	if stats.TotalExpenses != 1000 {
		t.Fatalf("expected combined expenses 1000, got %v", stats.TotalExpenses)
	}
	if stats.ActiveProjects != 1 || stats.CompletedProjects != 2 {
		t.Fatalf("unexpected project counts: %+v", stats)
	}
	if stats.PaidInvoices != 1 || stats.UnpaidInvoices != 2 {
		t.Fatalf("unexpected invoice counts: %+v", stats)
	}
}
