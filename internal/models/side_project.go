package models

import "time"

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// SideProject: one-off job outside the fixed client retainers.
type SideProject struct {
	ID        uint          `gorm:"primaryKey"`
	Name      string        `gorm:"size:100;not null"`
	Location  string        `gorm:"size:100"`
	Cost      float64       `gorm:"not null;default:0"`
	Profit    float64       `gorm:"not null;default:0"`
	StartDate time.Time     `gorm:"not null"`
	EndDate   *time.Time
	Status    ProjectStatus `gorm:"size:20;not null;default:active"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
