package cmd

import (
	"fmt"
	"strings"

	"github.com/screenlog/screenlog/lib"
	"github.com/screenlog/screenlog/sctx"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusConfigFlag *bool

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: GROUP_ID_CONFIG,
	Short:   "View status info including the data directory and stored record counts",
	Run: func(cmd *cobra.Command, args []string) {
		lib.CheckFatalError(sctx.InitConfig())
		ctx := sctx.MakeContext()
		config := sctx.GetConf(ctx)
		db := sctx.GetDb(ctx)
		defer db.Close()

		fmt.Printf("screenlog: v0.%s\n", lib.Version)
		fmt.Printf("Data Dir: %s\n", config.DataDir)

		numDevices, err := db.DevicesCount(ctx)
		lib.CheckFatalError(err)
		numSnapshots, err := db.SnapshotsCount(ctx)
		lib.CheckFatalError(err)
		numIntervals, err := db.IntervalsCount(ctx)
		lib.CheckFatalError(err)
		numAnomalies, err := db.AnomaliesCount(ctx)
		lib.CheckFatalError(err)
		fmt.Printf("Devices: %d\nSnapshots: %d\nIntervals: %d\nAnomalies: %d\n",
			numDevices, numSnapshots, numIntervals, numAnomalies)
		fmt.Printf("Commit Hash: %s\n", lib.GitCommit)

		if *statusConfigFlag {
			y, err := yaml.Marshal(config)
			if err != nil {
				lib.CheckFatalError(fmt.Errorf("failed to marshal config to yaml: %w", err))
			}
			indented := "\t" + strings.ReplaceAll(string(y), "\n", "\n\t")
			fmt.Printf("Full Config:\n%s\n", indented)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusConfigFlag = statusCmd.Flags().Bool("full-config", false, "Display screenlog's full config")
}
