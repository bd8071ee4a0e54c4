package ledger

import (
	"fmt"
	"math"
)

// Size is a fixed-point quantity of memory measured in millionths of a MiB.
//
// Region arithmetic is done on integers so that adjacency checks
// (start+size == next start) and exact-fit checks never depend on
// floating-point rounding.
type Size int64

// MiB is one mebibyte expressed as a Size.
const MiB Size = 1_000_000

// FromMiB converts a floating MiB value to the nearest Size unit.
func FromMiB(v float64) Size {
	return Size(math.Round(v * float64(MiB)))
}

// maxMiB is the first MiB value whose Size no longer fits in an int64.
const maxMiB = float64(math.MaxInt64) / float64(MiB)

// ParseMiB is FromMiB for untrusted input. NaN, infinities and magnitudes
// beyond the int64 range are rejected with ErrInvalidSize.
func ParseMiB(v float64) (Size, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= maxMiB {
		return 0, fmt.Errorf("%w: %v MiB is out of range", ErrInvalidSize, v)
	}
	return FromMiB(v), nil
}

// MiBs returns s as floating MiB.
func (s Size) MiBs() float64 {
	return float64(s) / float64(MiB)
}

// String formats s with two decimals, the resolution the simulator reports in.
func (s Size) String() string {
	return fmt.Sprintf("%.2f MiB", s.MiBs())
}
