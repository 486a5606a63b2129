// Package cli holds the storefront command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Bilingual storefront API",
	Long: `storefront serves the shop API: catalog browsing, carts, checkout,
order history and the admin order console, in English and Amharic.

The identity service can run inside the API process or on its own
as a gRPC service that the API consults to validate users.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
