// Package sim runs the side-by-side comparison of fit strategies.
//
// A Session owns six independent ledgers, one per Variant, plus the catalog
// of programs that can be placed. Placing a program from the catalog places
// it in all six ledgers at once so the strategies can be compared on the
// same workload. Ledgers never share state.
//
// A Session is not safe for concurrent use.
package sim

import (
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/joshuapare/partsim/internal/logger"
	"github.com/joshuapare/partsim/mem/ledger"
	"github.com/joshuapare/partsim/mem/place"
)

// Defaults for a session built with zero Options fields.
var (
	DefaultCapacity = 16 * ledger.MiB
	DefaultReserved = ledger.MiB
)

// Options configures a Session. Zero sizes take the package defaults; a nil
// Catalog takes DefaultCatalog. Overhead is a pointer so that an explicit
// zero allowance can be told apart from an unset one.
type Options struct {
	Capacity ledger.Size
	Reserved ledger.Size
	Overhead *ledger.Size
	Catalog  []Program
	Logger   *slog.Logger
}

// OverheadOf returns a pointer to size for Options.Overhead.
func OverheadOf(size ledger.Size) *ledger.Size { return &size }

// Outcome is the result of placing a program in one variant.
type Outcome struct {
	Variant Variant
	place.Result
}

// Session is one simulation: six ledgers and a program catalog.
type Session struct {
	capacity ledger.Size
	reserved ledger.Size
	catalog  *Catalog
	placer   *place.Placer
	ledgers  map[Variant]*ledger.Ledger
	log      *slog.Logger
}

// New creates a session with every ledger initialized and its reserved
// region installed.
func New(opts Options) (*Session, error) {
	opts = withDefaults(opts)

	catalog, err := NewCatalog(opts.Catalog)
	if err != nil {
		return nil, err
	}

	log := logger.Component(opts.Logger, "sim")
	placer, err := place.New(*opts.Overhead, opts.Logger)
	if err != nil {
		return nil, err
	}

	if err := checkReserve(opts.Capacity, opts.Reserved); err != nil {
		return nil, err
	}

	s := &Session{
		capacity: opts.Capacity,
		reserved: opts.Reserved,
		catalog:  catalog,
		placer:   placer,
		ledgers:  make(map[Variant]*ledger.Ledger, 6),
		log:      log,
	}
	for _, v := range Variants() {
		l, err := ledger.New(opts.Capacity)
		if err != nil {
			return nil, err
		}
		s.ledgers[v] = l
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func withDefaults(opts Options) Options {
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Reserved == 0 {
		opts.Reserved = DefaultReserved
	}
	if opts.Overhead == nil {
		opts.Overhead = OverheadOf(place.DefaultOverhead)
	}
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	return opts
}

// checkReserve reports whether a reserved region of size fits an empty
// ledger of capacity, the only way Reserve can fail after Reset.
func checkReserve(capacity, size ledger.Size) error {
	if size <= 0 || size >= capacity {
		return fmt.Errorf("%w: got %s, capacity %s", ledger.ErrInvalidReserve, size, capacity)
	}
	return nil
}

// Capacity returns the size of every ledger's address space.
func (s *Session) Capacity() ledger.Size { return s.capacity }

// ReservedSize returns the size of the protected region installed at startup.
func (s *Session) ReservedSize() ledger.Size { return s.reserved }

// Overhead returns the per-program allowance.
func (s *Session) Overhead() ledger.Size { return s.placer.Overhead() }

// Catalog returns the program catalog.
func (s *Session) Catalog() *Catalog { return s.catalog }

// Ledger returns the ledger for v.
func (s *Session) Ledger(v Variant) (*ledger.Ledger, error) {
	l, ok := s.ledgers[v]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownVariant, v)
	}
	return l, nil
}

// Reset empties every ledger and reinstalls the reserved region. The catalog
// is kept. If the reserved size cannot fit, no ledger is touched.
func (s *Session) Reset() error {
	if err := checkReserve(s.capacity, s.reserved); err != nil {
		return err
	}
	for _, v := range Variants() {
		l := s.ledgers[v]
		l.Reset()
		if err := l.Reserve(s.reserved); err != nil {
			return fmt.Errorf("reserve %s in %s: %w", s.reserved, v.Key(), err)
		}
	}
	s.log.Info("session reset", "capacity", s.capacity.String(), "reserved", s.reserved.String())
	return nil
}

// PlaceAll places the named catalog program in all six ledgers. Compaction
// is allowed only in the compaction variants.
func (s *Session) PlaceAll(name string) ([]Outcome, error) {
	prog, ok := s.catalog.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
	}

	outcomes := make([]Outcome, 0, len(s.ledgers))
	for _, v := range Variants() {
		res, err := s.placeProgram(v, prog)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, Outcome{Variant: v, Result: res})
	}

	s.log.Info("placed in all variants", "program", prog.Name,
		"succeeded", lo.CountBy(outcomes, func(o Outcome) bool { return o.Success }))
	return outcomes, nil
}

// Place places the named catalog program in a single variant.
func (s *Session) Place(v Variant, name string) (Outcome, error) {
	prog, ok := s.catalog.Find(name)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
	}
	res, err := s.placeProgram(v, prog)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Variant: v, Result: res}, nil
}

func (s *Session) placeProgram(v Variant, prog Program) (place.Result, error) {
	l, err := s.Ledger(v)
	if err != nil {
		return place.Result{Index: -1}, err
	}
	return s.placer.Place(l, place.Request{
		Program:         prog.Name,
		Segments:        prog.Segments,
		Strategy:        v.Strategy,
		AllowCompaction: v.Compaction,
	})
}

// Release frees the named program in one variant. It reports false when the
// program was not present there.
func (s *Session) Release(v Variant, name string) (bool, error) {
	l, err := s.Ledger(v)
	if err != nil {
		return false, err
	}
	return s.placer.Release(l, name), nil
}

// ReleaseAll frees the named program in every variant.
func (s *Session) ReleaseAll(name string) map[Variant]bool {
	out := make(map[Variant]bool, len(s.ledgers))
	for _, v := range Variants() {
		out[v] = s.placer.Release(s.ledgers[v], name)
	}
	return out
}

// Compact compacts one ledger and returns its new snapshot.
func (s *Session) Compact(v Variant) ([]ledger.Region, error) {
	l, err := s.Ledger(v)
	if err != nil {
		return nil, err
	}
	return s.placer.Compact(l), nil
}

// Snapshot returns the regions of one ledger.
func (s *Session) Snapshot(v Variant) ([]ledger.Region, error) {
	l, err := s.Ledger(v)
	if err != nil {
		return nil, err
	}
	return l.Snapshot(), nil
}

// Restore replaces one ledger's regions, e.g. with repaired persisted state.
func (s *Session) Restore(v Variant, regions []ledger.Region) error {
	l, err := s.Ledger(v)
	if err != nil {
		return err
	}
	if err := l.Restore(regions); err != nil {
		return fmt.Errorf("restore %s: %w", v.Key(), err)
	}
	return nil
}

// Metrics returns the metrics of one ledger.
func (s *Session) Metrics(v Variant) (ledger.Metrics, error) {
	l, err := s.Ledger(v)
	if err != nil {
		return ledger.Metrics{}, err
	}
	return l.Metrics(), nil
}
