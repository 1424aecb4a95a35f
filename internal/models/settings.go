package models

import "time"

// Settings: singleton row holding the issuer identity used on invoices.
type Settings struct {
	ID             uint    `gorm:"primaryKey"`
	CompanyName    string  `gorm:"size:100;not null"`
	CompanyEmail   string  `gorm:"size:100"`
	CompanyPhone   string  `gorm:"size:30"`
	CompanyAddress string  `gorm:"size:255"`
	Currency       string  `gorm:"size:10;not null;default:USD"`
	TaxRate        float64 `gorm:"not null;default:0"` // percent
	InvoicePrefix  string  `gorm:"size:20;not null;default:INV"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
