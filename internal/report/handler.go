package report

import (
	"bytes"
	"fmt"
	"time"

	"greencare-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type MonthRow struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	Label    string  `json:"label"` // "June 2026"
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

type monthKey struct {
	year  int
	month int
}

// monthlySeries builds the per-month income/expense/profit rows for the
// requested window, ending at the last day of the anchor month. Income
// is paid payments; expenses are labor plus project expenses.
func monthlySeries(db *gorm.DB, year int, months int, anchor time.Time) ([]MonthRow, error) {
	end := time.Date(year, anchor.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	start := end.AddDate(0, -months, 0)

	income := make(map[monthKey]float64)
	expenses := make(map[monthKey]float64)

	var payments []models.Payment
	if err := db.Where("status = ? AND date >= ? AND date < ?",
		models.PaymentStatusPaid, start, end).Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	for _, p := range payments {
		k := monthKey{p.Date.Year(), int(p.Date.Month())}
		income[k] += p.Amount
	}

	var laborExpenses []models.LaborExpense
	if err := db.Where("date >= ? AND date < ?", start, end).Find(&laborExpenses).Error; err != nil {
		return nil, fmt.Errorf("load labor expenses: %w", err)
	}
	for _, e := range laborExpenses {
		k := monthKey{e.Date.Year(), int(e.Date.Month())}
		expenses[k] += e.Amount
	}

	var projectExpenses []models.ProjectExpense
	if err := db.Where("date >= ? AND date < ?", start, end).Find(&projectExpenses).Error; err != nil {
		return nil, fmt.Errorf("load project expenses: %w", err)
	}
	for _, e := range projectExpenses {
		k := monthKey{e.Date.Year(), int(e.Date.Month())}
		expenses[k] += e.Amount
	}

	rows := make([]MonthRow, 0, months)
	for cursor := start; cursor.Before(end); cursor = cursor.AddDate(0, 1, 0) {
		k := monthKey{cursor.Year(), int(cursor.Month())}
		row := MonthRow{
			Year:     k.year,
			Month:    k.month,
			Label:    fmt.Sprintf("%s %d", cursor.Month().String(), k.year),
			Income:   income[k],
			Expenses: expenses[k],
		}
		row.Profit = row.Income - row.Expenses
		rows = append(rows, row)
	}
	return rows, nil
}

func parseWindow(c *fiber.Ctx, now time.Time) (int, int, error) {
	year := c.QueryInt("year", now.Year())
	if year < 2000 || year > 2100 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "year is out of range")
	}
	months := c.QueryInt("months", 6)
	if months < 1 || months > 24 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "months must be between 1 and 24")
	}
	return year, months, nil
}

// GET /api/reports/monthly?year=&months=
func MonthlyReportHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		year, months, err := parseWindow(c, now)
		if err != nil {
			return err
		}

		rows, err := monthlySeries(db, year, months, now)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build monthly report")
		}
		return c.JSON(rows)
	}
}

// GET /api/reports/export?year=&months=
// Same series as the monthly report, as an XLSX workbook.
func ExportReportHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		year, months, err := parseWindow(c, now)
		if err != nil {
			return err
		}

		rows, err := monthlySeries(db, year, months, now)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build monthly report")
		}

		buf, err := renderWorkbook(rows)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not render report workbook")
		}

		filename := fmt.Sprintf("monthly-report-%d.xlsx", year)
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
		return c.SendStream(bytes.NewReader(buf.Bytes()))
	}
}

func renderWorkbook(rows []MonthRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Monthly Report"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Month", "Income", "Expenses", "Net Profit"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	var totalIncome, totalExpenses float64
	for i, r := range rows {
		values := []interface{}{r.Label, r.Income, r.Expenses, r.Profit}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row: %w", err)
			}
		}
		totalIncome += r.Income
		totalExpenses += r.Expenses
	}

	totalRow := len(rows) + 2
	totals := []interface{}{"Total", totalIncome, totalExpenses, totalIncome - totalExpenses}
	for j, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(j+1, totalRow)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return nil, fmt.Errorf("write totals: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf, nil
}
