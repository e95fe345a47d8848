package cli

import (
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one incremental ingestion pass over the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Ingest(cmd.Context())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the incremental pass on a fixed interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context())
	},
}
