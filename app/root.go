// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/possuite/backoffice/internal/config"
	"github.com/possuite/backoffice/internal/logger"
)

var (
	configPath string // directory holding main.toml
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pos-backoffice",
	Short: "Back office of the point of sale: users, roles, permissions and menu access",
	Long: `pos-backoffice is the administrative web service of the point of sale.
It manages user accounts, roles and their permissions, and which menu
sections every role sees.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "directory holding main.toml (default ./etc/)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration and initializes the global logger.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}
