package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// Payment: money received (or expected) from a client company.
type Payment struct {
	ID        uint `gorm:"primaryKey"`
	CompanyID uint `gorm:"index;not null"`
	Company   Company
	Amount    float64       `gorm:"not null"`
	Date      time.Time     `gorm:"index;not null"`
	Reference string        `gorm:"size:255"`
	Status    PaymentStatus `gorm:"size:20;not null;default:pending"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
