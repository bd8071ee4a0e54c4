package sim

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/partsim/mem/fit"
)

// ErrUnknownVariant indicates a variant key that names none of the six ledgers.
var ErrUnknownVariant = errors.New("sim: unknown variant")

// Variant identifies one of the session's ledgers: a fit strategy combined
// with whether compaction may run when a placement does not fit.
type Variant struct {
	Strategy   fit.Strategy
	Compaction bool
}

// Variants returns the six variants in display order: the three strategies
// without compaction, then the three with compaction.
func Variants() []Variant {
	out := make([]Variant, 0, 6)
	for _, compaction := range []bool{false, true} {
		for _, s := range fit.Strategies() {
			out = append(out, Variant{Strategy: s, Compaction: compaction})
		}
	}
	return out
}

// Key is the stable identifier used in persisted state and on the command
// line, e.g. "no_first" or "c_worst".
func (v Variant) Key() string {
	prefix := "no_"
	if v.Compaction {
		prefix = "c_"
	}
	return prefix + v.Strategy.String()
}

// String is the human-readable title.
func (v Variant) String() string {
	if v.Compaction {
		return "With Compaction - " + v.Strategy.Title()
	}
	return "Without Compaction - " + v.Strategy.Title()
}

// ParseVariant resolves a key produced by Variant.Key.
func ParseVariant(key string) (Variant, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, v := range Variants() {
		if v.Key() == k {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, key)
}
