package database

import (
	"gorm.io/gorm"

	"taskflow_backend/internal/models"
)

// Migrate runs AutoMigrate for every model, after making sure the uuid
// extension used by the primary key defaults is available.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Comment{},
		&models.Attachment{},
		&models.Notification{},
		&models.NotificationPreference{},
	)
}
