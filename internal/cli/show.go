package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"price-loader/internal/app"
)

var (
	showLimit int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current converted prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Limit: showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the checkpoint position and stored row count",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Status(cmd.Context())
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of prices to display")
}
