package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the profile database. sqlite keeps the profile in a local file,
// postgres lets several machines share one profile.
func Open(driver, dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	switch driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), config)
	case "postgres":
		return gorm.Open(postgres.Open(dsn), config)
	default:
		return nil, fmt.Errorf("unsupported profile database driver %q", driver)
	}
}

// AutoMigrate creates the tables the given models need
func AutoMigrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate profile tables: %w", err)
	}
	return nil
}
