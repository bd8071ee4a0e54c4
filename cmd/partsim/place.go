package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/partsim/sim"
)

var (
	placeVariant   string
	releaseVariant string
)

func init() {
	placeCmd := newPlaceCmd()
	placeCmd.Flags().StringVar(&placeVariant, "variant", "", "Place only in this variant (e.g. c_best)")
	rootCmd.AddCommand(placeCmd)

	releaseCmd := newReleaseCmd()
	releaseCmd.Flags().StringVar(&releaseVariant, "variant", "", "Release only in this variant")
	rootCmd.AddCommand(releaseCmd)
}

type outcomeView struct {
	Variant   string  `json:"variant"`
	Success   bool    `json:"success"`
	PlacedAt  float64 `json:"placedAt,omitempty"`
	Requested float64 `json:"requested"`
	Compacted bool    `json:"compacted,omitempty"`
}

type releaseView struct {
	Variant  string `json:"variant"`
	Released bool   `json:"released"`
}

func newPlaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place <program>",
		Short: "Place a catalog program",
		Long: `The place command places a program in all six variants, or in one with
--variant. Each variant selects a free region with its own fit strategy;
the compaction variants compact once and retry when nothing fits. A
variant without room reports a failure and keeps its memory unchanged.

Example:
  partsim place Chrome
  partsim place minecraft --variant c_first`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(cmd.Context(), args)
		},
	}
}

func runPlace(ctx context.Context, args []string) error {
	variants, err := selectVariants(placeVariant)
	if err != nil {
		return err
	}

	return withSession(ctx, true, func(s *sim.Session) error {
		var outcomes []sim.Outcome
		if len(variants) == len(sim.Variants()) {
			outcomes, err = s.PlaceAll(args[0])
			if err != nil {
				return err
			}
		} else {
			o, err := s.Place(variants[0], args[0])
			if err != nil {
				return err
			}
			outcomes = append(outcomes, o)
		}

		if jsonOut {
			views := make([]outcomeView, len(outcomes))
			for i, o := range outcomes {
				views[i] = outcomeView{
					Variant:   o.Variant.Key(),
					Success:   o.Success,
					Requested: o.Requested.MiBs(),
					Compacted: o.Compacted,
				}
				if o.Success {
					views[i].PlacedAt = o.PlacedAt.MiBs()
				}
			}
			return printJSON(views)
		}

		for _, o := range outcomes {
			note := ""
			if o.Compacted {
				note = " after compaction"
			}
			if o.Success {
				printInfo("%-9s placed %s at %.2f%s\n", o.Variant.Key(), o.Requested, o.PlacedAt.MiBs(), note)
			} else {
				printInfo("%-9s no room for %s%s\n", o.Variant.Key(), o.Requested, note)
			}
		}
		return nil
	})
}

func newReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release <program>",
		Short: "Release a placed program",
		Long: `The release command frees every region the program holds, in all six
variants or in one with --variant, and merges the freed space with free
neighbours.

Example:
  partsim release Chrome
  partsim release Chrome --variant no_worst`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd.Context(), args)
		},
	}
}

func runRelease(ctx context.Context, args []string) error {
	variants, err := selectVariants(releaseVariant)
	if err != nil {
		return err
	}

	return withSession(ctx, true, func(s *sim.Session) error {
		name := args[0]
		if p, ok := s.Catalog().Find(name); ok {
			name = p.Name
		}

		views := make([]releaseView, 0, len(variants))
		for _, v := range variants {
			released, err := s.Release(v, name)
			if err != nil {
				return err
			}
			views = append(views, releaseView{Variant: v.Key(), Released: released})
		}

		if jsonOut {
			return printJSON(views)
		}
		for _, rv := range views {
			if rv.Released {
				printInfo("%-9s released %s\n", rv.Variant, name)
			} else {
				printInfo("%-9s %s is not present\n", rv.Variant, name)
			}
		}
		return nil
	})
}
