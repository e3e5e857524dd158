// Package dsn builds database connection strings from the configuration.
package dsn

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/possuite/backoffice/internal/config"
)

// sqliteDefaultPragma enforces the cascade on role_permissions and role_menu_access.
const sqliteDefaultPragma = "_pragma=foreign_keys(1)"

// Create builds the Data Source Name for the configured engine.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return Postgres(&cfg.DB)
	case config.EngineSQLite:
		return SQLite(&cfg.DB)
	default:
		return MySQL(&cfg.DB)
	}
}

// MySQL returns a go-sql-driver DSN: user:pass@tcp(host:port)/name?extras.
func MySQL(db *config.DB) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.Extras,
	)
}

// Postgres returns a postgres URL. Extras is appended as the query string.
func Postgres(db *config.DB) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     "/" + db.Name,
		RawQuery: db.Extras,
	}

	return u.String()
}

// SQLite returns a file DSN for DB.Name with foreign keys enabled.
// An empty name opens a private in-memory database.
func SQLite(db *config.DB) string {
	name := db.Name
	if name == "" {
		name = ":memory:"
	}

	query := sqliteDefaultPragma
	if db.Extras != "" {
		query = strings.TrimPrefix(db.Extras, "?") + "&" + sqliteDefaultPragma
	}

	return "file:" + name + "?" + query
}
