package state

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/joshuapare/partsim/mem/ledger"
)

// FixKind classifies a repair applied while loading a ledger.
type FixKind int

const (
	FixDroppedEmpty      FixKind = iota // Zero or negative size region removed
	FixDemotedReserved                  // Extra reserved region turned free
	FixMovedReserved                    // Reserved region moved to the high end
	FixRebased                          // Region starts recomputed to close gaps/overlaps
	FixPadded                           // Missing space appended as free
	FixMerged                           // Adjacent free regions merged
	FixInstalledReserved                // Missing reserved region installed
	FixCompacted                        // Ledger compacted to make room for the reserved region
	FixInitialized                      // Ledger missing from the document, started fresh
)

func (k FixKind) String() string {
	switch k {
	case FixDroppedEmpty:
		return "DROPPED_EMPTY"
	case FixDemotedReserved:
		return "DEMOTED_RESERVED"
	case FixMovedReserved:
		return "MOVED_RESERVED"
	case FixRebased:
		return "REBASED"
	case FixPadded:
		return "PADDED"
	case FixMerged:
		return "MERGED"
	case FixInstalledReserved:
		return "INSTALLED_RESERVED"
	case FixCompacted:
		return "COMPACTED"
	case FixInitialized:
		return "INITIALIZED"
	default:
		return "UNKNOWN"
	}
}

// Fix records one repair.
type Fix struct {
	Ledger string  // Variant key
	Kind   FixKind // What was done
	Detail string  // Human-readable description
}

func (f Fix) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Ledger, f.Kind, f.Detail)
}

// Repair turns possibly inconsistent records into a region list satisfying
// every ledger invariant for the given capacity.
//
// Regions are ordered by start, the reserved region (the first one, if
// several are marked) is moved to the end with its size unchanged, starts are
// recomputed back to back, missing space is added as free space below the
// reserved region and adjacent free regions are merged. A ledger with no
// reserved region gets one of defaultReserved, with the occupied regions packed
// below it when the tail is not free. Space beyond capacity cannot be repaired and yields
// ErrCorruptState.
func Repair(key string, records []RegionRecord, capacity, defaultReserved ledger.Size) ([]ledger.Region, []Fix, error) {
	var fixes []Fix
	fix := func(kind FixKind, format string, args ...any) {
		fixes = append(fixes, Fix{Ledger: key, Kind: kind, Detail: fmt.Sprintf(format, args...)})
	}

	decoded, err := DecodeRegions(records)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", key, err)
	}
	regions := make([]ledger.Region, 0, len(decoded))
	for _, r := range decoded {
		if r.Size <= 0 {
			fix(FixDroppedEmpty, "region at %s has size %s", r.Start, r.Size)
			continue
		}
		regions = append(regions, r)
	}
	slices.SortStableFunc(regions, func(a, b ledger.Region) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})

	// Keep the first reserved region, demote the rest.
	reservedAt := -1
	for i, r := range regions {
		if !r.IsReserved() {
			continue
		}
		if reservedAt < 0 {
			reservedAt = i
			continue
		}
		regions[i] = ledger.FreeRegion(r.Start, r.Size)
		fix(FixDemotedReserved, "second reserved region at %s", r.Start)
	}

	if reservedAt >= 0 && reservedAt != len(regions)-1 {
		r := regions[reservedAt]
		regions = append(slices.Delete(regions, reservedAt, reservedAt+1), r)
		reservedAt = len(regions) - 1
		fix(FixMovedReserved, "reserved region of %s moved from %s to the high end", r.Size, r.Start)
	}

	rebased := 0
	var total ledger.Size
	for i, r := range regions {
		if r.Size > capacity-total {
			return nil, fixes, fmt.Errorf("%w: %s: region %d of %s overruns capacity %s at %s", ErrCorruptState, key, i, r.Size, capacity, total)
		}
		if r.Start != total {
			regions[i] = rebase(r, total)
			rebased++
		}
		total += r.Size
	}
	if rebased > 0 {
		fix(FixRebased, "%d region start(s) recomputed", rebased)
	}

	if total < capacity {
		missing := capacity - total
		if reservedAt >= 0 {
			r := regions[reservedAt]
			regions[reservedAt] = rebase(r, r.Start+missing)
			regions = slices.Insert(regions, reservedAt, ledger.FreeRegion(r.Start, missing))
			reservedAt++
		} else {
			regions = append(regions, ledger.FreeRegion(total, missing))
		}
		fix(FixPadded, "%s of unaccounted space added as free", missing)
	}

	if merged := ledger.Coalesce(regions); len(merged) != len(regions) {
		fix(FixMerged, "%d adjacent free region(s) merged", len(regions)-len(merged))
		regions = merged
	}

	l, err := ledger.New(capacity)
	if err != nil {
		return nil, fixes, err
	}
	if err := l.Restore(regions); err != nil {
		return nil, fixes, fmt.Errorf("%w: %s: %w", ErrCorruptState, key, err)
	}

	if reservedAt < 0 {
		err := l.Reserve(defaultReserved)
		if errors.Is(err, ledger.ErrInsufficientSpace) {
			err = packBelowReserved(l, defaultReserved)
			if err == nil {
				fix(FixCompacted, "occupied regions compacted below the reserved region")
			}
		}
		if err != nil {
			return nil, fixes, fmt.Errorf("%w: %s: install reserved region: %w", ErrCorruptState, key, err)
		}
		fix(FixInstalledReserved, "reserved region of %s installed", defaultReserved)
	}

	return l.Snapshot(), fixes, nil
}

// packBelowReserved lays l out the way Compact would if a reserved region of
// the given size were already installed: free space at the low end, occupied
// regions in order, then the reserved region.
func packBelowReserved(l *ledger.Ledger, size ledger.Size) error {
	occupied := lo.Reject(l.Snapshot(), func(r ledger.Region, _ int) bool { return r.IsFree() })
	used := lo.SumBy(occupied, func(r ledger.Region) ledger.Size { return r.Size })
	if used+size > l.Capacity() {
		return fmt.Errorf("%w: %s in use, %s reserved, capacity %s", ledger.ErrInsufficientSpace, used, size, l.Capacity())
	}

	cursor := l.Capacity() - size - used
	packed := make([]ledger.Region, 0, len(occupied)+2)
	if cursor > 0 {
		packed = append(packed, ledger.FreeRegion(0, cursor))
	}
	for _, r := range occupied {
		packed = append(packed, rebase(r, cursor))
		cursor += r.Size
	}
	packed = append(packed, ledger.OccupiedRegion(cursor, size, ledger.Owner{Program: ledger.ReservedProgram, Reserved: true}))
	return l.Restore(packed)
}

// rebase returns r moved to start, keeping its status and owner.
func rebase(r ledger.Region, start ledger.Size) ledger.Region {
	if owner, ok := r.Owner(); ok {
		return ledger.OccupiedRegion(start, r.Size, owner)
	}
	return ledger.FreeRegion(start, r.Size)
}
