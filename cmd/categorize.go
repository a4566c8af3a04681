package cmd

import (
	"fmt"

	"github.com/screenlog/screenlog/lib"
	"github.com/screenlog/screenlog/sctx"
	"github.com/spf13/cobra"
)

var categorizeAlias *string

var categorizeCmd = &cobra.Command{
	Use:     "categorize [app name] [category]",
	GroupID: GROUP_ID_REPORTING,
	Short:   "Assign a category (and optional display alias) to an app",
	Long:    "With no arguments, lists apps that have usage but no category yet, most used first. With an app name and a category, records the mapping used by `screenlog report`.",
	Args:    cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		lib.CheckFatalError(sctx.InitConfig())
		ctx := sctx.MakeContext()
		db := sctx.GetDb(ctx)
		defer db.Close()

		if len(args) == 0 {
			appNames, err := db.UncategorizedApps(ctx)
			lib.CheckFatalError(err)
			if len(appNames) == 0 {
				fmt.Println("All apps with recorded usage are categorized")
				return
			}
			fmt.Printf("%d uncategorized apps (most used first):\n", len(appNames))
			for _, appName := range appNames {
				fmt.Printf("  %s\n", appName)
			}
			return
		}
		if len(args) != 2 {
			lib.CheckFatalError(fmt.Errorf("expected both an app name and a category, got only %q", args[0]))
		}

		var alias *string
		if *categorizeAlias != "" {
			alias = categorizeAlias
		}
		lib.CheckFatalError(db.CategoryUpsert(ctx, args[0], args[1], alias))
		fmt.Printf("Categorized %q as %q\n", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(categorizeCmd)
	categorizeAlias = categorizeCmd.Flags().String("alias", "", "Display name to use instead of the raw app name")
}
