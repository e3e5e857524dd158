// Package daemon opens the store, prepares the session storage and runs the web service.
package daemon

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/possuite/backoffice/internal/config"
	"github.com/possuite/backoffice/internal/db/conn"
	"github.com/possuite/backoffice/internal/db/dsn"
	"github.com/possuite/backoffice/internal/web"
	"github.com/possuite/backoffice/internal/web/session"
)

// SessionTable is the table the session storages keep their rows in.
const SessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
}

// Start runs the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	go func() {
		if err := d.webService.Start(addr); err != nil {
			log.Error().Err(err).Msg("web service stopped")
		}
	}()

	log.Info().Str("addr", addr).Str("url", d.cfg.Webserver.URL).Msg("back office started")

	d.webService.WaitShutdown()

	return d.Close()
}

// Close releases the database handle.
func (d *Daemon) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// New opens and migrates the database, seeds a fresh store and builds the web service.
func New(cfg *config.Config) (*Daemon, error) {
	db, err := Prepare(cfg)
	if err != nil {
		return nil, err
	}

	session.Init(sessionStorage(cfg))

	return &Daemon{
		cfg:        cfg,
		db:         db,
		webService: web.New(cfg, db),
	}, nil
}

// Prepare opens the database, migrates the schema and seeds the default data.
func Prepare(cfg *config.Config) (*gorm.DB, error) {
	if cfg == nil {
		return nil, conn.ErrConfigNil
	}

	db, err := conn.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = conn.Migrate(db); err != nil {
		return nil, err
	}

	if err = Seed(db, cfg.Seed); err != nil {
		return nil, err
	}

	return db, nil
}

// sessionStorage keeps sessions next to the data so they survive restarts.
// sqlite falls back to the in-memory store of the session middleware.
func sessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         SessionTable,
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         SessionTable,
		})
	default:
		log.Warn().Str("engine", cfg.DB.GormEngine).Msg("sessions are kept in memory and lost on restart")
		return nil
	}
}
