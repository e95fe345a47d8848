package cli

import (
	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Refresh currency metadata and conversion rates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().RefreshRates(cmd.Context())
	},
}
