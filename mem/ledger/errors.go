package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrRegionNotFree indicates an allocation targeted an occupied region.
	ErrRegionNotFree = errors.New("ledger: region is not free")

	// ErrInsufficientSpace indicates the requested size exceeds the target region.
	ErrInsufficientSpace = errors.New("ledger: insufficient space in region")

	// ErrIndexOutOfRange indicates a region index outside the ledger.
	ErrIndexOutOfRange = errors.New("ledger: region index out of range")

	// ErrInvalidSize indicates a zero or negative size.
	ErrInvalidSize = errors.New("ledger: size must be positive")

	// ErrInvalidReserve indicates a reserved size that is non-positive or
	// does not leave any allocatable space.
	ErrInvalidReserve = errors.New("ledger: reserved size must be in (0, capacity)")

	// ErrReservedOwner indicates an attempt to allocate on behalf of the
	// reserved owner through the ordinary allocation path.
	ErrReservedOwner = errors.New("ledger: reserved owner cannot be allocated")

	// ErrCorruptLayout indicates a region list violating the ledger invariants.
	ErrCorruptLayout = errors.New("ledger: corrupt region layout")
)

// LayoutError describes which region broke which invariant.
type LayoutError struct {
	Index  int    // Region index where the violation was found
	Reason string // Human-readable description
}

// Error implements the error interface.
func (e *LayoutError) Error() string {
	return fmt.Sprintf("%v: region %d: %s", ErrCorruptLayout, e.Index, e.Reason)
}

// Unwrap lets errors.Is match ErrCorruptLayout.
func (e *LayoutError) Unwrap() error {
	return ErrCorruptLayout
}
