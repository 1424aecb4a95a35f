package database

import (
	"fmt"

	"greencare-backend/internal/config"
	"greencare-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects and migrates the schema. The handle is passed down to the
// handlers explicitly; there is no package-level DB.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		dialector = postgres.Open(cfg.DatabaseDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Payment{},
		&models.Labor{},
		&models.LaborExpense{},
		&models.SalaryPayment{},
		&models.SideProject{},
		&models.ProjectExpense{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.InvoiceSequence{},
		&models.Settings{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
