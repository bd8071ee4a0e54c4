package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasure(t *testing.T) {
	regions := []Region{free(0, 3), prog("A", 3, 2), free(5, 5), prog("B", 10, 1), free(11, 4), reserved(15, 1)}

	m := Measure(regions)

	assert.Equal(t, mib(16), m.Capacity)
	assert.Equal(t, mib(4), m.Used)
	assert.Equal(t, mib(12), m.Free)
	assert.Equal(t, 3, m.FreeRegions)
	assert.Equal(t, mib(5), m.LargestFree)
	assert.Equal(t, 25, m.PercentUsed)
}

func TestMeasure_RoundsHalfUp(t *testing.T) {
	// 0.2 of 16 MiB used is 1.25%, 0.08 is exactly 0.5%.
	assert.Equal(t, 1, Measure([]Region{prog("A", 0, 0.2), free(0.2, 15.8)}).PercentUsed)
	assert.Equal(t, 1, Measure([]Region{prog("A", 0, 0.08), free(0.08, 15.92)}).PercentUsed)
}

func TestMeasure_NoFreeRegions(t *testing.T) {
	m := Measure([]Region{prog("A", 0, 15), reserved(15, 1)})

	assert.Equal(t, 0, m.FreeRegions)
	assert.Equal(t, Size(0), m.LargestFree)
	assert.Equal(t, 100, m.PercentUsed)
}

func TestMeasure_Empty(t *testing.T) {
	assert.Equal(t, Metrics{}, Measure(nil))
}
