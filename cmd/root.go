package cmd

import (
	"os"

	"github.com/screenlog/screenlog/lib"
	"github.com/spf13/cobra"
)

const (
	GROUP_ID_INGESTION = "group_id_ingestion"
	GROUP_ID_REPORTING = "group_id_reporting"
	GROUP_ID_CONFIG    = "group_id_config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screenlog",
	Short: "screenlog: Screen time analytics from exported usage snapshots",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: GROUP_ID_INGESTION, Title: "Ingestion"})
	rootCmd.AddGroup(&cobra.Group{ID: GROUP_ID_REPORTING, Title: "Reporting"})
	rootCmd.AddGroup(&cobra.Group{ID: GROUP_ID_CONFIG, Title: "Configuration"})
	rootCmd.Version = "v0." + lib.Version
}
