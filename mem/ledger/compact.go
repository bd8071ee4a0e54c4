package ledger

// Compact slides every occupied region toward the high end of the address
// space, directly below the reserved region, leaving a single free region at
// the low end.
//
// Occupied regions keep their relative order, owner and segment tag. The
// reserved region keeps its size and is placed at [capacity-size, capacity).
// Without a reserved region the last occupied region ends at capacity.
// Compact cannot fail on a valid ledger, and compacting twice is the same as
// compacting once.
func (l *Ledger) Compact() {
	var (
		reserved    Region
		hasReserved bool
		occupied    = make([]Region, 0, len(l.regions))
		used        Size
	)

	// Regions are already in address order, so collecting in one pass
	// preserves program order.
	for _, r := range l.regions {
		switch {
		case r.IsFree():
		case r.IsReserved():
			reserved, hasReserved = r, true
		default:
			occupied = append(occupied, r)
			used += r.Size
		}
	}

	var reservedSize Size
	if hasReserved {
		reservedSize = reserved.Size
	}

	cursor := l.capacity - reservedSize - used
	compacted := make([]Region, 0, len(occupied)+2)
	if cursor > 0 {
		compacted = append(compacted, FreeRegion(0, cursor))
	}

	for _, r := range occupied {
		compacted = append(compacted, r.at(cursor))
		cursor += r.Size
	}

	if hasReserved {
		compacted = append(compacted, reserved.at(l.capacity-reservedSize))
	}

	l.regions = compacted
}
