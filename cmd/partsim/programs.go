package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/joshuapare/partsim/mem/ledger"
	"github.com/joshuapare/partsim/sim"
)

func init() {
	rootCmd.AddCommand(newProgramsCmd())
	rootCmd.AddCommand(newAddProgramCmd())
}

type programView struct {
	Name     string    `json:"name"`
	Segments []float64 `json:"segments"`
	Total    float64   `json:"total"`
}

func newProgramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "programs",
		Short: "List the programs that can be placed",
		Long: `The programs command lists the catalog. The total column is the size a
program occupies once placed: its segments plus the per-program overhead.

Example:
  partsim programs
  partsim programs --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrograms(cmd.Context())
		},
	}
}

func runPrograms(ctx context.Context) error {
	return withSession(ctx, false, func(s *sim.Session) error {
		programs := s.Catalog().List()
		if jsonOut {
			return printJSON(lo.Map(programs, func(p sim.Program, _ int) programView {
				return programView{
					Name:     p.Name,
					Segments: lo.Map(p.Segments, func(seg ledger.Size, _ int) float64 { return seg.MiBs() }),
					Total:    p.Total(s.Overhead()).MiBs(),
				}
			}))
		}

		printInfo("%-16s %-24s %s\n", "NAME", "SEGMENTS (MiB)", "TOTAL")
		for _, p := range programs {
			segs := lo.Map(p.Segments, func(seg ledger.Size, _ int) string {
				return strconv.FormatFloat(seg.MiBs(), 'f', -1, 64)
			})
			printInfo("%-16s %-24s %s\n", p.Name, fmt.Sprint(segs), p.Total(s.Overhead()))
		}
		printVerbose("Overhead per program: %s\n", s.Overhead())
		return nil
	})
}

func newAddProgramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-program <name> <mib>",
		Short: "Add a single-segment program to the catalog",
		Long: `The add-program command adds a program with one segment of the given size
in MiB. Names are unique regardless of case.

Example:
  partsim add-program Emacs 0.35`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddProgram(cmd.Context(), args)
		},
	}
}

func runAddProgram(ctx context.Context, args []string) error {
	mib, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", args[1], err)
	}
	size, err := ledger.ParseMiB(mib)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", args[1], err)
	}

	return withSession(ctx, true, func(s *sim.Session) error {
		p, err := s.Catalog().Add(args[0], size)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(programView{Name: p.Name, Segments: []float64{mib}, Total: p.Total(s.Overhead()).MiBs()})
		}
		printInfo("Added %s (%s with overhead)\n", p.Name, p.Total(s.Overhead()))
		return nil
	})
}
