// Package conn opens and migrates the back-office database.
package conn

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/config"
	"github.com/possuite/backoffice/internal/db/dsn"
	"github.com/possuite/backoffice/internal/db/models"
)

const slowQueryThreshold = 500 * time.Millisecond

// ErrConfigNil is returned when Open is called without a configuration.
var ErrConfigNil = errors.New("config is nil")

// Open connects to the database selected by cfg.DB.GormEngine.
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	switch cfg.DB.GormEngine {
	case config.EngineSQLite:
		return OpenSQLite(dsn.Create(cfg))
	case config.EnginePostgres:
		return open(gormpostgres.Open(dsn.Create(cfg)))
	default:
		return open(gormmysql.Open(dsn.Create(cfg)))
	}
}

// OpenSQLite opens a sqlite database through the pure Go driver.
// The pool is limited to one connection so an in-memory database is shared by every query.
func OpenSQLite(source string) (*gorm.DB, error) {
	db, err := open(sqlite.Open(source))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Migrate creates or updates every table of the store.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(log.Logger, slowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}
