package ledger

import "fmt"

// Owner identifies who holds an occupied region.
type Owner struct {
	Program  string // Program name
	Segment  int    // Segment tag; 0 when the program is placed as one block
	Reserved bool   // Protected system region
}

// status tags a region as free or occupied.
type status uint8

const (
	statusFree status = iota
	statusOccupied
)

// Region is a contiguous span of the address space.
//
// The owner is only reachable through Owner(), which reports false for free
// regions; a free region has no owner to read by mistake.
type Region struct {
	Start Size
	Size  Size

	status status
	owner  Owner
}

// FreeRegion builds a free region.
func FreeRegion(start, size Size) Region {
	return Region{Start: start, Size: size, status: statusFree}
}

// OccupiedRegion builds a region held by owner.
func OccupiedRegion(start, size Size, owner Owner) Region {
	return Region{Start: start, Size: size, status: statusOccupied, owner: owner}
}

// End returns the first offset past the region.
func (r Region) End() Size { return r.Start + r.Size }

// IsFree reports whether the region is free.
func (r Region) IsFree() bool { return r.status == statusFree }

// IsReserved reports whether the region is the protected system region.
func (r Region) IsReserved() bool { return r.status == statusOccupied && r.owner.Reserved }

// Owner returns the region's owner. ok is false for free regions.
func (r Region) Owner() (owner Owner, ok bool) {
	if r.status != statusOccupied {
		return Owner{}, false
	}
	return r.owner, true
}

// HeldBy reports whether an ordinary (non-reserved) occupied region belongs to program.
func (r Region) HeldBy(program string) bool {
	return r.status == statusOccupied && !r.owner.Reserved && r.owner.Program == program
}

// at returns a copy of r moved to start.
func (r Region) at(start Size) Region {
	r.Start = start
	return r
}

// String renders the region for logs and test failures.
func (r Region) String() string {
	switch {
	case r.IsFree():
		return fmt.Sprintf("Free(%s+%s)", r.Start, r.Size)
	case r.owner.Reserved:
		return fmt.Sprintf("Reserved[%s](%s+%s)", r.owner.Program, r.Start, r.Size)
	default:
		return fmt.Sprintf("%s#%d(%s+%s)", r.owner.Program, r.owner.Segment, r.Start, r.Size)
	}
}
