package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/castboard/castboard/internal/daemon"
)

func init() { //nolint: gochecknoinits
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "",
		"Password of the admin account created on an empty database")

	rootCmd.AddCommand(seedCmd)
}

var (
	adminPassword string

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create the default permissions, roles and admin account",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			db, err := daemon.OpenDB(&cfg)
			if err != nil {
				return err
			}

			if err = daemon.Seed(db, adminPassword); err != nil {
				return err
			}

			log.Info().Msg("seed completed")

			return nil
		},
	}
)
