package models

import "time"

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice: Amount is always the server-computed sum of the items,
// never a client-supplied figure.
type Invoice struct {
	ID            uint   `gorm:"primaryKey"`
	InvoiceNumber string `gorm:"size:50;uniqueIndex;not null"`
	CompanyID     uint   `gorm:"index;not null"`
	Company       Company
	Amount        float64       `gorm:"not null;default:0"`
	Status        InvoiceStatus `gorm:"size:20;not null;default:draft"`
	EmailSent     bool          `gorm:"default:false"`
	Items         []InvoiceItem `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InvoiceItem: one line of an invoice. Position preserves the order the
// lines were entered in.
type InvoiceItem struct {
	ID          uint `gorm:"primaryKey"`
	InvoiceID   uint `gorm:"index;not null"`
	Position    int  `gorm:"not null"`
	Description string  `gorm:"size:255;not null"`
	Quantity    float64 `gorm:"not null"`
	Rate        float64 `gorm:"not null"`
	Amount      float64 `gorm:"not null"` // Quantity * Rate, denormalized
}

// InvoiceSequence: store-owned monotonic counter, one row per prefix.
// Replaces the old timestamp-plus-random number heuristic which could
// collide and was never checked for uniqueness.
type InvoiceSequence struct {
	ID     uint   `gorm:"primaryKey"`
	Prefix string `gorm:"size:20;uniqueIndex;not null"`
	Next   int64  `gorm:"not null;default:1"`
}
