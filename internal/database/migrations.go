package database

import (
	"gorm.io/gorm"

	"github.com/voltride/voltride-backend/internal/models"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Depot{},
		&models.Vehicle{},
		&models.Booking{},
		&models.Contract{},
	)
	if err != nil {
		return err
	}

	// Update users table
	if db.Migrator().HasTable(&models.User{}) {
		columns := []string{
			"ADD COLUMN IF NOT EXISTS license_no text DEFAULT ''",
			"ADD COLUMN IF NOT EXISTS user_type text DEFAULT 'renter'",
		}

		for _, column := range columns {
			if err := db.Exec("ALTER TABLE users " + column).Error; err != nil {
				return err
			}
		}

		// Update constraint
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_user_type_check`)
		db.Exec(`ALTER TABLE users ADD CONSTRAINT users_user_type_check CHECK (user_type IN ('renter', 'staff'))`)
	}

	// The sweep scans by (status, payment_due_at); keep the composite index
	// even though AutoMigrate only creates the single-column one.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_bookings_status_payment_due_at ON bookings (status, payment_due_at)`).Error; err != nil {
		return err
	}

	// Booking codes are the payment correlation key; enforce uniqueness at
	// the database level regardless of model tags.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_code ON bookings (code)`).Error; err != nil {
		return err
	}

	return nil
}
