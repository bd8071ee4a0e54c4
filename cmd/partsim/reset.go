package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/partsim/sim"
)

func init() {
	rootCmd.AddCommand(newResetCmd())
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Empty every variant's memory",
		Long: `The reset command releases everything in all six variants and reinstalls
the reserved region. The program catalog is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(cmd.Context())
		},
	}
}

func runReset(ctx context.Context) error {
	return withSession(ctx, true, func(s *sim.Session) error {
		if err := s.Reset(); err != nil {
			return err
		}
		printInfo("Reset %d variants (%s, %s reserved)\n", len(sim.Variants()), s.Capacity(), s.ReservedSize())
		return nil
	})
}
