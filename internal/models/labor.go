package models

import "time"

type SalaryType string

const (
	SalaryTypeMonthly SalaryType = "monthly"
	SalaryTypeWeekly  SalaryType = "weekly"
	SalaryTypeDaily   SalaryType = "daily"
)

// Labor: a worker on the payroll.
type Labor struct {
	ID           uint       `gorm:"primaryKey"`
	Name         string     `gorm:"size:100;not null"`
	PhotoURL     string     `gorm:"size:500"`
	Phone        string     `gorm:"size:30"`
	Address      string     `gorm:"size:255"`
	Role         string     `gorm:"size:100"`
	SalaryType   SalaryType `gorm:"size:20;not null;default:monthly"`
	SalaryAmount float64    `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
