package ledger

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// regionOpts lets cmp look inside Region's unexported tag.
var regionOpts = cmp.AllowUnexported(Region{})

func mib(v float64) Size { return FromMiB(v) }

func free(start, size float64) Region { return FreeRegion(mib(start), mib(size)) }

func prog(name string, start, size float64) Region {
	return OccupiedRegion(mib(start), mib(size), Owner{Program: name})
}

func reserved(start, size float64) Region {
	return OccupiedRegion(mib(start), mib(size), Owner{Program: ReservedProgram, Reserved: true})
}

// newLayout builds a ledger of the given capacity holding exactly regions.
func newLayout(t testing.TB, capacity float64, regions ...Region) *Ledger {
	t.Helper()
	l, err := New(mib(capacity))
	require.NoError(t, err)
	require.NoError(t, l.Restore(regions))
	return l
}

// requireLayout fails with a readable diff if l does not hold want.
func requireLayout(t testing.TB, l *Ledger, want ...Region) {
	t.Helper()
	if diff := cmp.Diff(want, l.Snapshot(), regionOpts); diff != "" {
		t.Fatalf("unexpected layout (-want +got):\n%s", diff)
	}
}

// assertInvariants checks the ledger invariants and size conservation.
func assertInvariants(t testing.TB, l *Ledger) {
	t.Helper()
	require.NoError(t, l.Validate())
	require.Equal(t, l.Capacity(), Measure(l.Snapshot()).Capacity, "sizes must sum to capacity")
}
