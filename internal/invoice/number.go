package invoice

import (
	"fmt"

	"greencare-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NextInvoiceNumber allocates "PREFIX-000042" from the store-owned
// counter, inside the caller's transaction. The row update serializes
// concurrent allocations, and the unique index on invoice_number backs
// it up; numbers are never reused even if the surrounding insert fails.
func NextInvoiceNumber(tx *gorm.DB, prefix string) (string, error) {
	// Make sure the counter row exists; no-op when it already does.
	seed := models.InvoiceSequence{Prefix: prefix, Next: 1}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return "", fmt.Errorf("seed invoice sequence: %w", err)
	}

	res := tx.Model(&models.InvoiceSequence{}).
		Where("prefix = ?", prefix).
		Update("next", gorm.Expr("next + 1"))
	if res.Error != nil {
		return "", fmt.Errorf("advance invoice sequence: %w", res.Error)
	}

	var seq models.InvoiceSequence
	if err := tx.Where("prefix = ?", prefix).First(&seq).Error; err != nil {
		return "", fmt.Errorf("read invoice sequence: %w", err)
	}

	return fmt.Sprintf("%s-%06d", prefix, seq.Next-1), nil
}
