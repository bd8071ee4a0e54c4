package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/partsim/sim"
)

var (
	showVariant string
)

func init() {
	cmd := newShowCmd()
	cmd.Flags().StringVar(&showVariant, "variant", "", "Show only this variant (e.g. no_first, c_best)")
	rootCmd.AddCommand(cmd)
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the memory map of each variant",
		Long: `The show command prints every region of each variant's memory, lowest
address first, followed by its usage summary.

Example:
  partsim show
  partsim show --variant c_worst
  partsim show --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context())
		},
	}
	return cmd
}

func runShow(ctx context.Context) error {
	variants, err := selectVariants(showVariant)
	if err != nil {
		return err
	}

	return withSession(ctx, false, func(s *sim.Session) error {
		views := make([]ledgerView, 0, len(variants))
		for _, v := range variants {
			regions, err := s.Snapshot(v)
			if err != nil {
				return err
			}
			m, err := s.Metrics(v)
			if err != nil {
				return err
			}
			if jsonOut {
				views = append(views, ledgerView{
					Variant: v.Key(),
					Title:   v.String(),
					Regions: newRegionViews(regions),
					Metrics: newMetricsView(m),
				})
				continue
			}

			printInfo("%s\n", variantHeading(v))
			printRegions(regions)
			printMetrics(m)
			printInfo("\n")
		}
		if jsonOut {
			return printJSON(views)
		}
		return nil
	})
}
