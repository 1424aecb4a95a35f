package audit

import (
	"encoding/json"
	"fmt"

	"greencare-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Data        any // snapshot after create / before delete
}

// WriteLog records an audit entry. Callers treat failures as non-fatal:
// the initiating operation has already succeeded.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	dataStr := "null"
	if opts.Data != nil {
		if b, err := json.Marshal(opts.Data); err == nil {
			dataStr = string(b)
		}
	}

	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		Data:        dataStr,
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}
