// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/castboard/castboard/internal/config"
	"github.com/castboard/castboard/internal/logger"
)

var (
	configPath string // directory holding main.toml

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "castboard",
	Short: "castboard is the admin dashboard for venue stores, casts and shifts",
	Long: `castboard is the admin dashboard of a venue management system.
It manages stores, cast records, shifts across midnight and the BASE connection of each store.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory containing main.toml")
}

// loadConfig reads the configuration and sets up logging.
func loadConfig() error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
