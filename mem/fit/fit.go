// Package fit chooses which free region receives a new placement.
//
// Three strategies are provided. All of them consider only free,
// non-reserved regions at least as large as the request, and all of them
// lean toward the high end of the address space, where the reserved region
// sits:
//
//   - FirstFit: scan from the highest address down, take the first region that fits
//   - BestFit: smallest leftover; ties go to the larger start
//   - WorstFit: largest leftover; ties go to the larger start
//
// Not finding a region is a normal outcome reported as ok == false.
package fit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/partsim/mem/ledger"
)

// ErrUnknownStrategy is returned by ParseStrategy for unrecognized names.
var ErrUnknownStrategy = errors.New("fit: unknown strategy")

// View is the read-only region list a selector scans. *ledger.Ledger implements it.
type View interface {
	Len() int
	At(i int) ledger.Region
}

// Selector returns the index of the region to allocate from.
type Selector func(v View, size ledger.Size) (index int, ok bool)

// Strategy names a placement policy.
type Strategy uint8

const (
	FirstFit Strategy = iota + 1
	BestFit
	WorstFit
)

// Strategies lists every strategy in display order.
func Strategies() []Strategy {
	return []Strategy{FirstFit, BestFit, WorstFit}
}

func (s Strategy) String() string {
	switch s {
	case FirstFit:
		return "first"
	case BestFit:
		return "best"
	case WorstFit:
		return "worst"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// Title is the human-readable name.
func (s Strategy) Title() string {
	switch s {
	case FirstFit:
		return "First Fit"
	case BestFit:
		return "Best Fit"
	case WorstFit:
		return "Worst Fit"
	default:
		return s.String()
	}
}

// Valid reports whether s is one of the defined strategies.
func (s Strategy) Valid() bool {
	return s >= FirstFit && s <= WorstFit
}

// ParseStrategy accepts "first", "best", "worst" (with or without a "-fit"
// suffix, any case).
func ParseStrategy(name string) (Strategy, error) {
	n := strings.TrimSuffix(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "fit"), "-")
	n = strings.TrimSuffix(n, "_")
	for _, s := range Strategies() {
		if s.String() == n {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Selector returns the selection function for s, or nil for an invalid strategy.
func (s Strategy) Selector() Selector {
	switch s {
	case FirstFit:
		return First
	case BestFit:
		return Best
	case WorstFit:
		return Worst
	default:
		return nil
	}
}

// fits reports whether r can take a placement of size.
func fits(r ledger.Region, size ledger.Size) bool {
	return r.IsFree() && !r.IsReserved() && r.Size >= size
}

// First scans from the highest index downward and returns the first region
// that fits.
func First(v View, size ledger.Size) (int, bool) {
	for i := v.Len() - 1; i >= 0; i-- {
		if fits(v.At(i), size) {
			return i, true
		}
	}
	return -1, false
}

// Best returns the fitting region with the smallest leftover, preferring the
// larger start on a tie.
func Best(v View, size ledger.Size) (int, bool) {
	return pick(v, size, func(leftover, bestLeftover ledger.Size) int {
		switch {
		case leftover < bestLeftover:
			return 1
		case leftover > bestLeftover:
			return -1
		}
		return 0
	})
}

// Worst returns the fitting region with the largest leftover, preferring the
// larger start on a tie.
func Worst(v View, size ledger.Size) (int, bool) {
	return pick(v, size, func(leftover, bestLeftover ledger.Size) int {
		switch {
		case leftover > bestLeftover:
			return 1
		case leftover < bestLeftover:
			return -1
		}
		return 0
	})
}

// pick scans every fitting region and keeps the one better reports as an
// improvement (positive). On a tie (zero) the region with the larger start wins.
func pick(v View, size ledger.Size, better func(leftover, bestLeftover ledger.Size) int) (int, bool) {
	best := -1
	var bestLeftover ledger.Size
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		if !fits(r, size) {
			continue
		}
		leftover := r.Size - size
		if best < 0 {
			best, bestLeftover = i, leftover
			continue
		}
		switch better(leftover, bestLeftover) {
		case 1:
			best, bestLeftover = i, leftover
		case 0:
			if r.Start > v.At(best).Start {
				best = i
			}
		}
	}
	return best, best >= 0
}
