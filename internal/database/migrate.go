package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/school-fees-api/internal/models"
)

// openLateFineIndex backs the "one open late fine per student and reason" rule.
const openLateFineIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_fines_open_late
ON fines (student_id, reason)
WHERE fine_type = 'late' AND status IN ('pending', 'overdue')`

// Migrate creates or updates the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.ClassTeacher{},
		&models.Fee{},
		&models.Fine{},
		&models.Notification{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := db.Exec(openLateFineIndex).Error; err != nil {
		return fmt.Errorf("failed to create late fine index: %w", err)
	}

	return nil
}
