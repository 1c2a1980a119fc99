package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/leadops-backend/internal/domain/crm"
)

// AutoMigrateAll creates the lead schema, parents first, with the foreign
// keys the models declare.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(crm.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// EnsureLeadIndexes adds the composite indexes the purge surface reads by.
func EnsureLeadIndexes(db *gorm.DB) error {
	// Deletion history per lead, newest first.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_lead_deletion_log_lead_started
		ON lead_deletion_log (lead_id, started_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_lead_deletion_log_lead_started: %w", err)
	}

	// Evaluation lookup by message during discovery.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_message_evaluation_message
		ON message_evaluation (message_id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_message_evaluation_message: %w", err)
	}
	return nil
}
