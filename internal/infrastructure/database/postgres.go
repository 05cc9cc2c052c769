package database

import (
	"context"
	"fmt"
	"time"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/you/clinicsvc/internal/infrastructure/repositories"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a new database connection with production-ready settings.
// Driver errors are translated so repositories can match gorm.ErrDuplicatedKey
// and gorm.ErrForeignKeyViolated.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), Config(log))
}

// Config returns the gorm configuration shared by every dialect the service opens
func Config(log *zap.Logger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(zap.NewStdLog(log.Named("gorm")), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

// AutoMigrate performs database migration for all required tables
// This includes the clinic tables and the Casbin policy table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(repositories.Models()...); err != nil {
		return fmt.Errorf("failed to migrate clinic tables: %w", err)
	}

	// the adapter creates casbin_rule on construction
	if _, err := gormadapter.NewAdapterByDB(db); err != nil {
		return fmt.Errorf("failed to initialize Casbin GORM adapter: %w", err)
	}

	return nil
}

// SeedStatuses makes sure every named appointment status exists. Existing rows
// keep their ids.
func SeedStatuses(ctx context.Context, db *gorm.DB, names []string) error {
	for _, name := range names {
		row := repositories.DBAppointmentStatus{Description: name}
		if err := db.WithContext(ctx).Where("description = ?", name).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("failed to seed status %q: %w", name, err)
		}
	}
	return nil
}

// SeedReferenceData makes sure every named specialty and contract type exists.
// Existing rows keep their ids.
func SeedReferenceData(ctx context.Context, db *gorm.DB, specialties, contractTypes []string) error {
	for _, name := range specialties {
		row := repositories.DBSpecialty{Name: name}
		if err := db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("failed to seed specialty %q: %w", name, err)
		}
	}
	for _, description := range contractTypes {
		row := repositories.DBContractType{Description: description}
		if err := db.WithContext(ctx).Where("description = ?", description).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("failed to seed contract type %q: %w", description, err)
		}
	}
	return nil
}
