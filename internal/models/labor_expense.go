package models

import "time"

// LaborExpense: out-of-pocket expense recorded against a worker.
type LaborExpense struct {
	ID        uint `gorm:"primaryKey"`
	LaborID   uint `gorm:"index;not null"`
	Labor     Labor
	Purpose   string    `gorm:"size:255;not null"`
	Amount    float64   `gorm:"not null"`
	Date      time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
