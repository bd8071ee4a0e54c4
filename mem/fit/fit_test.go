package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/partsim/mem/ledger"
)

func mib(v float64) ledger.Size { return ledger.FromMiB(v) }

func free(start, size float64) ledger.Region {
	return ledger.FreeRegion(mib(start), mib(size))
}

func prog(name string, start, size float64) ledger.Region {
	return ledger.OccupiedRegion(mib(start), mib(size), ledger.Owner{Program: name})
}

func reserved(start, size float64) ledger.Region {
	return ledger.OccupiedRegion(mib(start), mib(size), ledger.Owner{Program: ledger.ReservedProgram, Reserved: true})
}

func newLayout(t *testing.T, capacity float64, regions ...ledger.Region) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New(mib(capacity))
	require.NoError(t, err)
	require.NoError(t, l.Restore(regions))
	return l
}

// TestFirst_ScansHighToLow verifies First-Fit picks the highest qualifying
// region, not index 0.
func TestFirst_ScansHighToLow(t *testing.T) {
	l := newLayout(t, 17, free(0, 4), prog("A", 4, 2), free(6, 10), reserved(16, 1))

	idx, ok := First(l, mib(3))
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestFirst_SkipsTooSmall(t *testing.T) {
	l := newLayout(t, 16, free(0, 4), prog("A", 4, 2), free(6, 1), prog("B", 7, 8), reserved(15, 1))

	idx, ok := First(l, mib(3))
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestBest_SmallestLeftover(t *testing.T) {
	l := newLayout(t, 16, free(0, 5), prog("A", 5, 1), free(6, 2), prog("B", 8, 1), free(9, 6), reserved(15, 1))

	idx, ok := Best(l, mib(1.5))
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestBest_TieGoesToLargerStart(t *testing.T) {
	l := newLayout(t, 16, free(0, 3), prog("A", 3, 1), free(4, 3), prog("B", 7, 8), reserved(15, 1))

	idx, ok := Best(l, mib(2))
	require.True(t, ok)
	assert.Equal(t, 2, idx, "equal leftover should prefer the region nearer the reserved region")
}

func TestWorst_LargestLeftover(t *testing.T) {
	l := newLayout(t, 16, free(0, 5), prog("A", 5, 1), free(6, 2), prog("B", 8, 1), free(9, 6), reserved(15, 1))

	idx, ok := Worst(l, mib(1))
	require.True(t, ok)
	assert.Equal(t, 4, idx)
}

func TestWorst_TieGoesToLargerStart(t *testing.T) {
	l := newLayout(t, 16, free(0, 4), prog("A", 4, 1), free(5, 4), prog("B", 9, 6), reserved(15, 1))

	idx, ok := Worst(l, mib(1))
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestSelectors_NotFound(t *testing.T) {
	l := newLayout(t, 16, free(0, 2), prog("A", 2, 1), free(3, 2), prog("B", 5, 10), reserved(15, 1))
	before := l.Snapshot()

	for _, s := range Strategies() {
		t.Run(s.String(), func(t *testing.T) {
			idx, ok := s.Selector()(l, mib(3))
			assert.False(t, ok)
			assert.Equal(t, -1, idx)
		})
	}
	assert.Equal(t, before, l.Snapshot())
}

func TestSelectors_NeverPickReserved(t *testing.T) {
	// The only region large enough is the reserved one.
	l := newLayout(t, 16, prog("A", 0, 1), free(1, 1), prog("B", 2, 10), reserved(12, 4))

	for _, s := range Strategies() {
		_, ok := s.Selector()(l, mib(3))
		assert.False(t, ok, s.String())
	}
}

func TestSelectors_ExactFitQualifies(t *testing.T) {
	l := newLayout(t, 16, free(0, 15), reserved(15, 1))

	for _, s := range Strategies() {
		idx, ok := s.Selector()(l, mib(15))
		require.True(t, ok, s.String())
		assert.Equal(t, 0, idx)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := map[string]Strategy{
		"first":     FirstFit,
		"First-Fit": FirstFit,
		"bestfit":   BestFit,
		"best_fit":  BestFit,
		" WORST ":   WorstFit,
	}
	for in, want := range tests {
		got, err := ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStrategy("next")
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestStrategy_Names(t *testing.T) {
	assert.Equal(t, "best", BestFit.String())
	assert.Equal(t, "Worst Fit", WorstFit.Title())
	assert.False(t, Strategy(0).Valid())
	assert.Nil(t, Strategy(9).Selector())
}
