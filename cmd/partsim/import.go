package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/partsim/internal/logger"
	"github.com/joshuapare/partsim/internal/state"
	"github.com/joshuapare/partsim/internal/store"
)

func init() {
	rootCmd.AddCommand(newImportCmd())
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Replace the session with an exported document",
		Long: `The import command loads a JSON document produced by export and stores it
as the current session. Documents that break the memory rules (gaps,
overlaps, a misplaced or missing reserved region) are repaired, and every
repair is listed. Space that does not fit the configured capacity cannot
be repaired and the import fails.

Example:
  partsim import session.json
  partsim import session.json --session lab`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args)
		},
	}
}

func runImport(ctx context.Context, args []string) error {
	inputPath := args[0]
	printVerbose("Reading document: %s\n", inputPath)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	doc, err := state.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	opts := cfg.SimOptions()
	opts.Logger = logger.L
	s, fixes, err := state.Load(doc, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	clean, err := state.Capture(s)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.StatePath)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.PutSession(ctx, cfg.Session, clean); err != nil {
		return fmt.Errorf("failed to save session %q: %w", cfg.Session, err)
	}

	if jsonOut {
		type fixView struct {
			Ledger string `json:"ledger"`
			Kind   string `json:"kind"`
			Detail string `json:"detail"`
		}
		views := make([]fixView, len(fixes))
		for i, f := range fixes {
			views[i] = fixView{Ledger: f.Ledger, Kind: f.Kind.String(), Detail: f.Detail}
		}
		return printJSON(map[string]interface{}{"session": cfg.Session, "fixes": views})
	}

	for _, f := range fixes {
		printInfo("Repaired %s\n", f)
	}
	printInfo("Imported %s as session %q (%d repair(s))\n", inputPath, cfg.Session, len(fixes))
	return nil
}
