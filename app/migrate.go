package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/possuite/backoffice/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Create or update the schema and seed the default roles, permissions and menu sections",
	PreRunE: loadConfig,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, err := daemon.Prepare(&cfg)
		if err != nil {
			return err
		}

		log.Info().Str("engine", cfg.DB.GormEngine).Msg("database migrated and seeded")

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}

		return sqlDB.Close()
	},
}
