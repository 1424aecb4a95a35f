package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ServiceList is stored as a JSON array so the same column works on
// Postgres and SQLite. Order is irrelevant.
type ServiceList []string

func (s ServiceList) Value() (driver.Value, error) {
	if s == nil {
		s = ServiceList{}
	}
	return json.Marshal(s)
}

func (s *ServiceList) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*s = ServiceList{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported services column type %T", value)
	}
}

// Company: permanent client with an optional fixed monthly retainer.
type Company struct {
	ID            uint        `gorm:"primaryKey"`
	Name          string      `gorm:"size:100;not null"`
	ContactPerson string      `gorm:"size:100"`
	Email         string      `gorm:"size:100"`
	Phone         string      `gorm:"size:30"`
	Address       string      `gorm:"size:255"`
	Location      string      `gorm:"size:100"`
	FixedSalary   float64     `gorm:"default:0"` // monthly retainer, distinct from Labor.SalaryAmount
	Services      ServiceList `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
