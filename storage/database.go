package storage

import (
	"github.com/ajdinkomic/camp-in-bh/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and runs the schema migrations. The handle is
// returned to the caller; no package-level database state exists.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the booking tables. Shared with the test
// databases, which open their own sqlite handles.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Campground{},
		&models.Reservation{},
		&models.BookingIntent{},
	)
}
