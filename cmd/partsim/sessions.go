package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/joshuapare/partsim/internal/store"
)

func init() {
	rootCmd.AddCommand(newSessionsCmd())
}

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		Long: `The sessions command lists the session names stored in the state
database. Select one with --session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(cmd.Context())
		},
	}
}

func runSessions(ctx context.Context) error {
	st, err := store.Open(cfg.StatePath)
	if err != nil {
		return err
	}
	defer st.Close()

	names, err := st.ListSessions(ctx)
	if err != nil && !errors.Is(err, store.ErrBucketNotFound) {
		return err
	}
	if names == nil {
		names = []string{}
	}

	if jsonOut {
		return printJSON(names)
	}
	for _, name := range names {
		marker := " "
		if name == cfg.Session {
			marker = "*"
		}
		printInfo("%s %s\n", marker, name)
	}
	if len(names) == 0 {
		printInfo("No stored sessions\n")
	}
	return nil
}
