// Package place performs program placement and release against a ledger.
//
// A placement selects a free region with the requested fit strategy. When
// nothing fits and the request allows it, the ledger is compacted once and
// the same strategy is tried exactly once more. A program always occupies a
// single contiguous region: its segments are summed together with a fixed
// per-program overhead before selection.
package place

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/partsim/internal/logger"
	"github.com/joshuapare/partsim/mem/fit"
	"github.com/joshuapare/partsim/mem/ledger"
)

// DefaultOverhead is the heap/stack allowance added to every program.
var DefaultOverhead = ledger.FromMiB(0.2)

// ErrInvalidRequest indicates a malformed placement request.
var ErrInvalidRequest = errors.New("place: invalid request")

// Request describes one program placement.
type Request struct {
	Program         string
	Segments        []ledger.Size
	Strategy        fit.Strategy
	AllowCompaction bool
}

// Result reports the outcome of a placement. A failed placement is not an
// error: Success is false and the ledger is unchanged unless Compacted is set.
type Result struct {
	Success   bool
	PlacedAt  ledger.Size // Start of the new region; meaningful only on success
	Index     int         // Region index of the new region; -1 on failure
	Requested ledger.Size // Segments plus overhead
	Compacted bool        // Compaction ran during this placement
}

// Placer commits placements to ledgers.
type Placer struct {
	overhead ledger.Size
	log      *slog.Logger
}

// New creates a Placer. A negative overhead is rejected; a nil logger uses
// the process-wide logger.
func New(overhead ledger.Size, log *slog.Logger) (*Placer, error) {
	if overhead < 0 {
		return nil, fmt.Errorf("%w: negative overhead %s", ErrInvalidRequest, overhead)
	}
	return &Placer{overhead: overhead, log: logger.Component(log, "place")}, nil
}

// Overhead returns the per-program allowance.
func (p *Placer) Overhead() ledger.Size { return p.overhead }

// RequestedSize returns the size a program with the given segments occupies.
func (p *Placer) RequestedSize(segments []ledger.Size) ledger.Size {
	total := p.overhead
	for _, s := range segments {
		total += s
	}
	return total
}

// Place selects a region for req and allocates it.
//
// An error is returned only for malformed requests, before the ledger is
// touched. Running out of space is reported through Result.Success.
func (p *Placer) Place(l *ledger.Ledger, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{Index: -1}, err
	}

	size := p.RequestedSize(req.Segments)
	res := Result{Index: -1, Requested: size}
	selectFn := req.Strategy.Selector()

	idx, ok := selectFn(l, size)
	if !ok && req.AllowCompaction {
		p.log.Debug("no fit, compacting", "program", req.Program, "strategy", req.Strategy.String(), "size", size.String())
		l.Compact()
		res.Compacted = true
		idx, ok = selectFn(l, size)
	}
	if !ok {
		p.log.Info("placement failed", "program", req.Program, "strategy", req.Strategy.String(),
			"size", size.String(), "compacted", res.Compacted)
		return res, nil
	}

	if err := l.Allocate(idx, ledger.Owner{Program: req.Program}, size); err != nil {
		// The selector only returns free regions that fit, so this means the
		// ledger and selector disagree.
		return res, fmt.Errorf("place %q at region %d: %w", req.Program, idx, err)
	}

	res.Success = true
	res.Index = idx
	res.PlacedAt = l.At(idx).Start
	p.log.Debug("placed", "program", req.Program, "strategy", req.Strategy.String(),
		"start", res.PlacedAt.String(), "size", size.String())
	return res, nil
}

// Release frees every region held by program. It reports false when the
// program was not present.
func (p *Placer) Release(l *ledger.Ledger, program string) bool {
	released := l.ReleaseByOwner(program)
	if released {
		p.log.Debug("released", "program", program)
	} else {
		p.log.Debug("release: program not present", "program", program)
	}
	return released
}

// Compact compacts l and logs the change in free-region count.
func (p *Placer) Compact(l *ledger.Ledger) []ledger.Region {
	before := l.Metrics().FreeRegions
	l.Compact()
	p.log.Debug("compacted", "free_regions_before", before, "free_regions_after", l.Metrics().FreeRegions)
	return l.Snapshot()
}

func validate(req Request) error {
	if req.Program == "" {
		return fmt.Errorf("%w: empty program name", ErrInvalidRequest)
	}
	if req.Program == ledger.ReservedProgram {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidRequest, req.Program)
	}
	if len(req.Segments) == 0 {
		return fmt.Errorf("%w: %q has no segments", ErrInvalidRequest, req.Program)
	}
	for i, s := range req.Segments {
		if s <= 0 {
			return fmt.Errorf("%w: %q segment %d has size %s", ErrInvalidRequest, req.Program, i, s)
		}
	}
	if !req.Strategy.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, req.Strategy)
	}
	return nil
}
