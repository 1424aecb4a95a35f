package models

import "time"

type SalaryStatus string

const (
	SalaryStatusPaid    SalaryStatus = "paid"
	SalaryStatusPending SalaryStatus = "pending"
)

// SalaryPayment: at most one record per worker and period. The composite
// unique index makes the upsert race-free; the old client-side
// search-then-insert could duplicate under concurrent submissions.
type SalaryPayment struct {
	ID          uint `gorm:"primaryKey"`
	LaborID     uint `gorm:"not null;uniqueIndex:idx_salary_period"`
	Labor       Labor
	Month       string       `gorm:"size:20;not null;uniqueIndex:idx_salary_period"` // month name, e.g. "June"
	Year        int          `gorm:"not null;uniqueIndex:idx_salary_period"`
	Amount      float64      `gorm:"not null"`
	Status      SalaryStatus `gorm:"size:20;not null;default:pending"`
	PaymentDate *time.Time   // set only when status is paid
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
