package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"namearchive/internal/namestore"
)

func newNamesCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "List stored names with their trend highlights",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}
			store, err := namestore.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			names, err := store.ListNames(ctx)
			if err != nil {
				return fmt.Errorf("list names: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No names stored yet (run `namearchive seed`)")
				return nil
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Name", "Peak Year", "Peak Count", strconv.Itoa(namestore.YearEnd)})
			tw.SetColumnConfigs([]table.ColumnConfig{
				{Number: 2, Align: text.AlignRight},
				{Number: 3, Align: text.AlignRight},
				{Number: 4, Align: text.AlignRight},
			})

			for _, name := range names {
				series, err := store.TrendFor(ctx, name)
				if err != nil {
					return fmt.Errorf("load trend for %q: %w", name, err)
				}
				peakYear, peakCount, latest := trendHighlights(series)
				tw.AppendRow(table.Row{name, peakYear, peakCount, latest})
			}

			fmt.Fprintln(out, tw.Render())
			fmt.Fprintf(out, "%d names stored\n", len(names))
			return nil
		},
	}
}

func trendHighlights(series []namestore.Point) (peakYear int, peakCount, latest int64) {
	for _, point := range series {
		if point.Value > peakCount {
			peakYear = point.Period
			peakCount = point.Value
		}
	}
	if len(series) > 0 {
		latest = series[len(series)-1].Value
	}
	return peakYear, peakCount, latest
}
