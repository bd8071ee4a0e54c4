package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/partsim/mem/ledger"
	"github.com/joshuapare/partsim/sim"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Compare usage and fragmentation across variants",
		Long: `The stats command shows, for all six variants side by side, the used
space, the free space left over (external fragmentation), the number of
free regions and the largest one.

Example:
  partsim stats
  partsim stats --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context())
		},
	}
	return cmd
}

func runStats(ctx context.Context) error {
	return withSession(ctx, false, func(s *sim.Session) error {
		variants := sim.Variants()
		metrics := make([]ledger.Metrics, len(variants))
		for i, v := range variants {
			m, err := s.Metrics(v)
			if err != nil {
				return err
			}
			metrics[i] = m
		}

		if jsonOut {
			views := make([]ledgerView, len(variants))
			for i, v := range variants {
				views[i] = ledgerView{Variant: v.Key(), Title: v.String(), Metrics: newMetricsView(metrics[i])}
			}
			return printJSON(views)
		}

		printInfo("%-9s %-22s %5s %11s %11s %6s %11s\n", "VARIANT", "USAGE", "%", "USED", "FREE", "HOLES", "LARGEST")
		for i, v := range variants {
			m := metrics[i]
			printInfo("%-9s %-22s %4d%% %11s %11s %6d %11s\n",
				v.Key(), bar(m, 20), m.PercentUsed, m.Used, m.Free, m.FreeRegions, m.LargestFree)
		}
		return nil
	})
}
