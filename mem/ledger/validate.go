package ledger

import "fmt"

// validateLayout checks that regions tile [0, capacity) exactly, that every
// region has a positive size, that free regions are maximally merged, and
// that at most one reserved region exists and it ends at capacity.
func validateLayout(capacity Size, regions []Region) error {
	if len(regions) == 0 {
		return &LayoutError{Index: 0, Reason: "no regions"}
	}

	var cursor Size
	reserved := -1
	for i, r := range regions {
		if r.Size <= 0 {
			return &LayoutError{Index: i, Reason: fmt.Sprintf("non-positive size %s", r.Size)}
		}
		if r.Start != cursor {
			return &LayoutError{Index: i, Reason: fmt.Sprintf("starts at %s, expected %s", r.Start, cursor)}
		}
		if i > 0 && r.IsFree() && regions[i-1].IsFree() {
			return &LayoutError{Index: i, Reason: "adjacent free regions not merged"}
		}
		if r.Size > capacity-cursor {
			return &LayoutError{Index: i, Reason: fmt.Sprintf("size %s overruns capacity %s at %s", r.Size, capacity, cursor)}
		}
		if r.IsReserved() {
			if reserved >= 0 {
				return &LayoutError{Index: i, Reason: fmt.Sprintf("second reserved region (first at %d)", reserved)}
			}
			reserved = i
		}
		cursor += r.Size
	}

	if cursor != capacity {
		return &LayoutError{Index: len(regions) - 1, Reason: fmt.Sprintf("regions span %s, capacity %s", cursor, capacity)}
	}
	if reserved >= 0 && regions[reserved].End() != capacity {
		return &LayoutError{Index: reserved, Reason: "reserved region does not end at capacity"}
	}
	return nil
}
