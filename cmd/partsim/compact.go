package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/partsim/sim"
)

var (
	compactVariant string
)

func init() {
	cmd := newCompactCmd()
	cmd.Flags().StringVar(&compactVariant, "variant", "", "Compact only this variant")
	rootCmd.AddCommand(cmd)
}

func newCompactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compact",
		Short: "Compact memory into a single free region",
		Long: `The compact command slides every placed program toward the high end of
memory, directly below the reserved region, keeping their order. All free
space ends up as one region at the low end.

Compaction is allowed in any variant on request; the "c_" variants also
compact on their own when a placement does not fit.

Example:
  partsim compact
  partsim compact --variant no_best`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompact(cmd.Context())
		},
	}
	return cmd
}

func runCompact(ctx context.Context) error {
	variants, err := selectVariants(compactVariant)
	if err != nil {
		return err
	}

	return withSession(ctx, true, func(s *sim.Session) error {
		views := make([]ledgerView, 0, len(variants))
		for _, v := range variants {
			before, err := s.Metrics(v)
			if err != nil {
				return err
			}
			regions, err := s.Compact(v)
			if err != nil {
				return err
			}
			after, err := s.Metrics(v)
			if err != nil {
				return err
			}

			if jsonOut {
				views = append(views, ledgerView{Variant: v.Key(), Title: v.String(),
					Regions: newRegionViews(regions), Metrics: newMetricsView(after)})
				continue
			}
			printInfo("%-9s %d free region(s) -> %d, largest free %s\n",
				v.Key(), before.FreeRegions, after.FreeRegions, after.LargestFree)
			if verbose {
				printRegions(regions)
			}
		}
		if jsonOut {
			return printJSON(views)
		}
		return nil
	})
}
