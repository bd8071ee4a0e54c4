package ledger

import (
	"fmt"
	"slices"
)

// ReservedProgram is the owner name given to the protected system region.
const ReservedProgram = "OS"

// Ledger is the ordered list of regions covering a fixed-size address space.
//
// Regions are kept sorted by Start, contiguous, and maximally merged: no two
// neighbouring regions are both free. Every exported method either applies
// fully or leaves the ledger untouched.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	capacity Size
	regions  []Region
}

// New creates a ledger with a single free region spanning capacity.
func New(capacity Size) (*Ledger, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %s", ErrInvalidSize, capacity)
	}
	return &Ledger{
		capacity: capacity,
		regions:  []Region{FreeRegion(0, capacity)},
	}, nil
}

// Capacity returns the total size of the address space.
func (l *Ledger) Capacity() Size { return l.capacity }

// Len returns the number of regions.
func (l *Ledger) Len() int { return len(l.regions) }

// At returns the region at index i. It panics if i is out of range, like a slice index.
func (l *Ledger) At(i int) Region { return l.regions[i] }

// Snapshot returns an ordered copy of the regions.
func (l *Ledger) Snapshot() []Region {
	return slices.Clone(l.regions)
}

// Reserved returns the protected region, if one is installed.
func (l *Ledger) Reserved() (Region, bool) {
	for _, r := range l.regions {
		if r.IsReserved() {
			return r, true
		}
	}
	return Region{}, false
}

// Reset drops every region, reserved included, and starts over with one free region.
func (l *Ledger) Reset() {
	l.regions = []Region{FreeRegion(0, l.capacity)}
}

// Reserve installs the protected system region of the given size at the high
// end of the address space.
//
// An existing reserved region is released first, so calling Reserve again
// replaces it rather than adding a second one. The tail-most region must then
// be free and large enough; otherwise ErrInsufficientSpace is returned and the
// ledger is unchanged.
func (l *Ledger) Reserve(size Size) error {
	if size <= 0 || size >= l.capacity {
		return fmt.Errorf("%w: got %s, capacity %s", ErrInvalidReserve, size, l.capacity)
	}

	regions := slices.Clone(l.regions)
	for i, r := range regions {
		if r.IsReserved() {
			regions[i] = FreeRegion(r.Start, r.Size)
		}
	}
	regions = coalesce(regions)

	tail := regions[len(regions)-1]
	if !tail.IsFree() || tail.Size < size {
		return fmt.Errorf("%w: tail region %s cannot hold reserved %s", ErrInsufficientSpace, tail, size)
	}

	reserved := OccupiedRegion(l.capacity-size, size, Owner{Program: ReservedProgram, Reserved: true})
	if tail.Size == size {
		regions[len(regions)-1] = reserved
	} else {
		regions[len(regions)-1] = FreeRegion(tail.Start, tail.Size-size)
		regions = append(regions, reserved)
	}

	l.regions = regions
	return nil
}

// Allocate places owner into the free region at index.
//
// If size equals the region's size the region becomes occupied in place;
// otherwise it is split into an occupied prefix and a free remainder.
func (l *Ledger) Allocate(index int, owner Owner, size Size) error {
	if index < 0 || index >= len(l.regions) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(l.regions))
	}
	if size <= 0 {
		return fmt.Errorf("%w: requested %s", ErrInvalidSize, size)
	}
	if owner.Reserved {
		return ErrReservedOwner
	}

	target := l.regions[index]
	if !target.IsFree() {
		return fmt.Errorf("%w: %s", ErrRegionNotFree, target)
	}
	if size > target.Size {
		return fmt.Errorf("%w: need %s, region has %s", ErrInsufficientSpace, size, target.Size)
	}

	placed := OccupiedRegion(target.Start, size, owner)
	if size == target.Size {
		l.regions[index] = placed
		return nil
	}

	remainder := FreeRegion(target.Start+size, target.Size-size)
	l.regions[index] = placed
	l.regions = slices.Insert(l.regions, index+1, remainder)
	return nil
}

// ReleaseByOwner frees every ordinary region held by program and merges the
// freed space with its free neighbours. It reports whether anything was freed;
// false means the program was not present.
func (l *Ledger) ReleaseByOwner(program string) bool {
	released := false
	for i, r := range l.regions {
		if r.HeldBy(program) {
			l.regions[i] = FreeRegion(r.Start, r.Size)
			released = true
		}
	}
	if !released {
		return false
	}

	for i := 0; i < len(l.regions); i++ {
		if l.regions[i].IsFree() {
			i = l.mergeAdjacentFree(i)
		}
	}
	return true
}

// ReleaseBySegment frees the first ordinary region held by program with the
// given segment tag and merges it with its free neighbours.
func (l *Ledger) ReleaseBySegment(program string, segment int) bool {
	for i, r := range l.regions {
		if r.HeldBy(program) && r.owner.Segment == segment {
			l.regions[i] = FreeRegion(r.Start, r.Size)
			l.mergeAdjacentFree(i)
			return true
		}
	}
	return false
}

// Restore replaces the ledger contents with regions after checking every
// invariant. On error the ledger is unchanged.
func (l *Ledger) Restore(regions []Region) error {
	if err := validateLayout(l.capacity, regions); err != nil {
		return err
	}
	l.regions = slices.Clone(regions)
	return nil
}

// Validate checks the ledger invariants.
func (l *Ledger) Validate() error {
	return validateLayout(l.capacity, l.regions)
}

// mergeAdjacentFree absorbs the free neighbours of the free region at i:
// first the left one, then the right one. It returns the index of the
// resulting region. Reserved regions are occupied and are never absorbed.
func (l *Ledger) mergeAdjacentFree(i int) int {
	if !l.regions[i].IsFree() {
		return i
	}

	if i > 0 && l.regions[i-1].IsFree() {
		l.regions[i-1].Size += l.regions[i].Size
		l.regions = slices.Delete(l.regions, i, i+1)
		i--
	}

	if i+1 < len(l.regions) && l.regions[i+1].IsFree() {
		l.regions[i].Size += l.regions[i+1].Size
		l.regions = slices.Delete(l.regions, i+1, i+2)
	}

	return i
}

// coalesce returns regions with every run of adjacent free regions merged.
// The input must be contiguous.
func coalesce(regions []Region) []Region {
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		if n := len(out); n > 0 && r.IsFree() && out[n-1].IsFree() {
			out[n-1].Size += r.Size
			continue
		}
		out = append(out, r)
	}
	return out
}

// Coalesce is the exported form of the free-run merge for callers that
// assemble region lists outside a ledger (state repair).
func Coalesce(regions []Region) []Region {
	return coalesce(regions)
}
