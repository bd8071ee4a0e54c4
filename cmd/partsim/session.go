package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/joshuapare/partsim/internal/logger"
	"github.com/joshuapare/partsim/internal/state"
	"github.com/joshuapare/partsim/internal/store"
	"github.com/joshuapare/partsim/sim"
)

// withSession opens the state database, loads the configured session (a
// fresh one if nothing is stored yet), runs fn and, when save is true,
// stores the session again. The database stays open, and locked against
// other partsim processes, for the whole call.
func withSession(ctx context.Context, save bool, fn func(*sim.Session) error) error {
	st, err := store.Open(cfg.StatePath)
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := loadSession(ctx, st)
	if err != nil {
		return err
	}

	if err := fn(s); err != nil {
		return err
	}
	if !save {
		return nil
	}

	doc, err := state.Capture(s)
	if err != nil {
		return err
	}
	if err := st.PutSession(ctx, cfg.Session, doc); err != nil {
		return fmt.Errorf("failed to save session %q: %w", cfg.Session, err)
	}
	printVerbose("Saved session %q to %s\n", cfg.Session, cfg.StatePath)
	return nil
}

func loadSession(ctx context.Context, st *store.SessionStore) (*sim.Session, error) {
	opts := cfg.SimOptions()
	opts.Logger = logger.L

	doc, err := st.GetSession(ctx, cfg.Session)
	if errors.Is(err, store.ErrKeyNotFound) || errors.Is(err, store.ErrBucketNotFound) {
		printVerbose("Starting new session %q\n", cfg.Session)
		return sim.New(opts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", cfg.Session, err)
	}

	s, fixes, err := state.Load(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", cfg.Session, err)
	}
	reportFixes(fixes)
	return s, nil
}

// reportFixes lists load-time repairs in verbose mode and logs them.
func reportFixes(fixes []state.Fix) {
	for _, f := range fixes {
		logger.L.Info("repaired ledger", "ledger", f.Ledger, "kind", f.Kind.String(), "detail", f.Detail)
		printVerbose("Repaired %s\n", f)
	}
}

// selectVariants returns the single variant named by key, or all six when
// key is empty.
func selectVariants(key string) ([]sim.Variant, error) {
	if key == "" {
		return sim.Variants(), nil
	}
	v, err := sim.ParseVariant(key)
	if err != nil {
		return nil, err
	}
	return []sim.Variant{v}, nil
}
