package database

import (
	"log"

	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Session{},
		&models.AvailabilityWindow{},
		&models.Booking{},
		&models.WaitlistEntry{},
		&models.BookingPolicy{},
		&models.BookingSeries{},
		&models.SeriesItem{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Safety-net partial unique indexes. The services serialize on row
	// locks; these back them up against double-booking at the storage level.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_active_group_booking
		ON bookings (session_id, requester_id)
		WHERE status IN ('pending', 'confirmed') AND session_id IS NOT NULL
	`)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_active_one_on_one_booking
		ON bookings (host_id, requester_id, start_at_utc)
		WHERE status IN ('pending', 'confirmed') AND window_id IS NOT NULL
	`)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_active_slot_booking
		ON bookings (window_id, start_at_utc)
		WHERE status IN ('pending', 'confirmed') AND window_id IS NOT NULL
	`)
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_active_waitlist_entry
		ON waitlist_entries (session_id, requester_id)
		WHERE status IN ('waiting', 'offered')
	`)

	return db
}
