package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeMC777/storefront/internal/config"
	"github.com/MikeMC777/storefront/internal/database"
	"github.com/MikeMC777/storefront/internal/identity"
)

var adminEmail string

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Give an account access to the admin console",
	RunE:  func(cmd *cobra.Command, args []string) error { return setAdmin(cmd, true) },
}

var revokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Remove an account's admin access",
	RunE:  func(cmd *cobra.Command, args []string) error { return setAdmin(cmd, false) },
}

func init() {
	for _, c := range []*cobra.Command{grantCmd, revokeCmd} {
		c.Flags().StringVar(&adminEmail, "email", "", "account email")
		_ = c.MarkFlagRequired("email")
		adminCmd.AddCommand(c)
	}
	rootCmd.AddCommand(adminCmd)
}

func setAdmin(cmd *cobra.Command, admin bool) error {
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

	ids := identity.NewService(identity.NewPGRepo(pool), identity.NewSigner(cfg.JWTSecret), cfg.SessionTTL)
	if err := ids.GrantAdmin(cmd.Context(), adminEmail, admin); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s admin=%t\n", adminEmail, admin)
	return nil
}
