package database

import (
	"ministry-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Supabase/Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers
// (PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Minister{},
		&models.EmergencyContact{},
		&models.Qualification{},
		&models.MinistryHistory{},
		&models.Child{},
		&models.Application{},
		&models.ApplicationDocument{},
		&models.IntakeSession{},
		&models.IntakeInvite{},
		&models.IntakeSubmission{},
		&models.ApprovedApplicant{},
	)
}
