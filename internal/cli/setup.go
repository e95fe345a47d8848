package cli

import (
	"os"

	"github.com/spf13/cobra"

	"price-loader/internal/app"
)

var setupAssumeYes bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create schema and views, refresh rates, and run an initial ingestion",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SetupOptions{
			AssumeYes: setupAssumeYes,
			Prompt:    os.Stdin,
			Output:    os.Stdout,
		}
		return getApp().Setup(cmd.Context(), opts)
	},
}

func init() {
	setupCmd.Flags().BoolVar(&setupAssumeYes, "yes", false, "Reset the database without prompting (destructive)")
}
