package cmd

import (
	"fmt"

	"github.com/screenlog/screenlog/ingest"
	"github.com/screenlog/screenlog/lib"
	"github.com/screenlog/screenlog/sctx"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:     "ingest",
	GroupID: GROUP_ID_INGESTION,
	Short:   "Scan the data directory for new export files and ingest them",
	Long:    "Parses every pending export file, persists new snapshots (re-ingesting an already-seen export is a no-op), rebuilds usage intervals for devices that received new data, and archives consumed files.",
	Run: func(cmd *cobra.Command, args []string) {
		lib.CheckFatalError(sctx.InitConfig())
		ctx := sctx.MakeContext()
		db := sctx.GetDb(ctx)
		defer db.Close()

		summary, err := ingest.Run(ctx, db, sctx.GetConf(ctx))
		lib.CheckFatalError(err)
		fmt.Printf("Processed %d files, added %d snapshots, rebuilt intervals for %d devices (%d intervals)\n",
			summary.FilesProcessed, summary.SnapshotsAdded, summary.DevicesRebuilt, summary.IntervalsRebuilt)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
