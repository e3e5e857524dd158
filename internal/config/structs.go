package config

import (
	"time"

	"github.com/possuite/backoffice/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Seed controls the first-run data written by the migrate command.
type Seed struct {
	AdminUsername string // username of the initial super-admin account
	AdminPassword string // initial password; change it after the first login
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Seed      Seed
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool    // enable static file browsing (for development purposes only)
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	Session        Session // session settings
}
