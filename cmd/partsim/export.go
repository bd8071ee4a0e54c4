package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/partsim/internal/state"
	"github.com/joshuapare/partsim/internal/writer"
	"github.com/joshuapare/partsim/sim"
)

func init() {
	rootCmd.AddCommand(newExportCmd())
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.json>",
		Short: "Export the session to a JSON document",
		Long: `The export command writes the catalog and all six memory maps to a JSON
document. The file is replaced atomically. Use "-" for stdout.

Example:
  partsim export session.json
  partsim export - | jq '.ledgers.c_best'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), args)
		},
	}
}

// newSink returns the destination for an exported document.
var newSink = func(path string) writer.Sink {
	return &writer.FileWriter{Path: path}
}

func runExport(ctx context.Context, args []string) error {
	outputPath := args[0]

	return withSession(ctx, false, func(s *sim.Session) error {
		doc, err := state.Capture(s)
		if err != nil {
			return err
		}
		data, err := state.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}

		if outputPath == "-" {
			_, err := os.Stdout.Write(append(data, '\n'))
			return err
		}

		if err := newSink(outputPath).WriteState(data); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputPath, err)
		}
		printInfo("Exported session %q to %s\n", cfg.Session, outputPath)
		return nil
	})
}
