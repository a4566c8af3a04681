package cmd

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/samber/lo"
	"github.com/screenlog/screenlog/lib"
	"github.com/screenlog/screenlog/parser"
	"github.com/screenlog/screenlog/sctx"
	"github.com/screenlog/screenlog/shared"
	"github.com/spf13/cobra"
)

var (
	reportDevice      *string
	reportYear        *int
	reportByCategory  *bool
	reportMinDuration *string
)

var reportCmd = &cobra.Command{
	Use:     "report",
	GroupID: GROUP_ID_REPORTING,
	Short:   "Show total usage per app (or per category) from the reconstructed intervals",
	Run: func(cmd *cobra.Command, args []string) {
		lib.CheckFatalError(sctx.InitConfig())
		ctx := sctx.MakeContext()
		db := sctx.GetDb(ctx)
		defer db.Close()

		rows, err := db.UsageReport(ctx)
		lib.CheckFatalError(err)

		minSeconds := parser.ParseDuration(*reportMinDuration)
		rows = lo.Filter(rows, func(row shared.UsageRow, _ int) bool {
			if *reportDevice != "" && row.DeviceName != *reportDevice {
				return false
			}
			if *reportYear != 0 && row.StartTime.Year() != *reportYear {
				return false
			}
			return row.DurationSeconds >= minSeconds
		})
		if len(rows) == 0 {
			fmt.Println("No usage data found. Have you run `screenlog ingest`?")
			return
		}

		totals := make(map[string]int)
		for _, row := range rows {
			key := row.DisplayName()
			if *reportByCategory {
				key = row.EffectiveCategory()
			}
			totals[key] += row.DurationSeconds
		}

		names := lo.Keys(totals)
		sort.Slice(names, func(i, j int) bool {
			if totals[names[i]] != totals[names[j]] {
				return totals[names[i]] > totals[names[j]]
			}
			return names[i] < names[j]
		})

		header := "App"
		if *reportByCategory {
			header = "Category"
		}
		headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
		tbl := table.New(header, "Total", "Share")
		tbl.WithHeaderFormatter(headerFmt)
		grandTotal := lo.Sum(lo.Values(totals))
		for _, name := range names {
			share := float64(totals[name]) / float64(grandTotal) * 100
			tbl.AddRow(name, lib.FormatDuration(totals[name]), fmt.Sprintf("%.1f%%", share))
		}
		tbl.Print()
		fmt.Printf("\nTotal: %s across %d intervals\n", lib.FormatDuration(grandTotal), len(rows))
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportDevice = reportCmd.Flags().String("device", "", "Only include usage from this device")
	reportYear = reportCmd.Flags().Int("year", 0, "Only include usage from this year")
	reportByCategory = reportCmd.Flags().Bool("by-category", false, "Aggregate by category instead of by app")
	reportMinDuration = reportCmd.Flags().String("min-duration", "", "Ignore intervals shorter than this, e.g. \"5m\" or \"1h 30m\"")
}
