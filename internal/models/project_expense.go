package models

import "time"

// ProjectExpense: cost recorded against a side project.
type ProjectExpense struct {
	ID          uint `gorm:"primaryKey"`
	ProjectID   uint `gorm:"index;not null"`
	Project     SideProject `gorm:"foreignKey:ProjectID"`
	Description string      `gorm:"size:255;not null"`
	Amount      float64     `gorm:"not null"`
	Date        time.Time   `gorm:"index;not null"`
	CreatedAt   time.Time
}
