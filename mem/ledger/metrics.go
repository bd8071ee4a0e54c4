package ledger

import (
	"math"

	"github.com/samber/lo"
)

// Metrics summarizes a ledger snapshot.
type Metrics struct {
	Capacity    Size // Total address space
	Used        Size // Occupied space, reserved region included
	Free        Size // Free space; the external fragmentation figure
	FreeRegions int  // Number of free regions
	LargestFree Size // Largest single free region
	PercentUsed int  // Used/Capacity as a whole percentage, rounded half up
}

// Measure computes metrics from regions without touching any ledger.
func Measure(regions []Region) Metrics {
	free := lo.Filter(regions, func(r Region, _ int) bool { return r.IsFree() })
	sizeOf := func(r Region) Size { return r.Size }

	m := Metrics{
		Capacity:    lo.SumBy(regions, sizeOf),
		Free:        lo.SumBy(free, sizeOf),
		FreeRegions: len(free),
	}
	m.Used = m.Capacity - m.Free
	if len(free) > 0 {
		m.LargestFree = lo.MaxBy(free, func(a, b Region) bool { return a.Size > b.Size }).Size
	}
	if m.Capacity > 0 {
		m.PercentUsed = int(math.Floor(float64(m.Used)*100/float64(m.Capacity) + 0.5))
	}
	return m
}

// Metrics is shorthand for Measure(l.Snapshot()).
func (l *Ledger) Metrics() Metrics {
	return Measure(l.regions)
}
