package state

import (
	"fmt"

	"github.com/joshuapare/partsim/mem/ledger"
	"github.com/joshuapare/partsim/sim"
)

// Load builds a session from doc. Capacity, reserved size and overhead come
// from opts; the catalog comes from the document unless it has none, in
// which case opts.Catalog (or the default catalog) is used. Every ledger is
// repaired before it is restored, and the applied repairs are returned.
func Load(doc Document, opts sim.Options) (*sim.Session, []Fix, error) {
	if len(doc.Programs) > 0 {
		programs := make([]sim.Program, 0, len(doc.Programs))
		for _, rec := range doc.Programs {
			p := sim.Program{Name: rec.Name, Segments: make([]ledger.Size, len(rec.Segments))}
			for i, seg := range rec.Segments {
				size, err := ledger.ParseMiB(seg)
				if err != nil {
					return nil, nil, fmt.Errorf("%w: program %q segment %d: %w", ErrCorruptState, rec.Name, i, err)
				}
				p.Segments[i] = size
			}
			programs = append(programs, p)
		}
		opts.Catalog = programs
	}

	s, err := sim.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}

	var fixes []Fix
	for _, v := range sim.Variants() {
		records, ok := doc.Ledgers[v.Key()]
		if !ok {
			fixes = append(fixes, Fix{Ledger: v.Key(), Kind: FixInitialized, Detail: "no saved regions"})
			continue
		}

		regions, applied, err := Repair(v.Key(), records, s.Capacity(), s.ReservedSize())
		fixes = append(fixes, applied...)
		if err != nil {
			return nil, fixes, err
		}
		if err := s.Restore(v, regions); err != nil {
			return nil, fixes, fmt.Errorf("%w: %w", ErrCorruptState, err)
		}
	}
	return s, fixes, nil
}
