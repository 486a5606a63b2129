package cli

import (
	"errors"
	"log"

	"github.com/spf13/cobra"

	"github.com/MikeMC777/storefront/internal/config"
	"github.com/MikeMC777/storefront/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.PostgresDSN == "" {
			return errors.New("missing required configuration: POSTGRES_DSN")
		}
		pool, err := database.Connect(cmd.Context(), cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		log.Printf("[database] schema applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
