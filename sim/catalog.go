package sim

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/joshuapare/partsim/mem/ledger"
)

var (
	// ErrUnknownProgram indicates a program name missing from the catalog.
	ErrUnknownProgram = errors.New("sim: program not in catalog")

	// ErrDuplicateProgram indicates a catalog entry with a name already in use.
	ErrDuplicateProgram = errors.New("sim: program already in catalog")

	// ErrInvalidProgram indicates an empty name or a non-positive segment size.
	ErrInvalidProgram = errors.New("sim: invalid program definition")
)

// Program is a catalog entry: a named program and its segment sizes.
type Program struct {
	Name     string
	Segments []ledger.Size
}

// Total returns the size the program occupies once overhead is added.
func (p Program) Total(overhead ledger.Size) ledger.Size {
	total := overhead
	for _, s := range p.Segments {
		total += s
	}
	return total
}

func (p Program) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidProgram)
	}
	if p.Name == ledger.ReservedProgram {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidProgram, p.Name)
	}
	if len(p.Segments) == 0 {
		return fmt.Errorf("%w: %q has no segments", ErrInvalidProgram, p.Name)
	}
	var total ledger.Size
	for i, s := range p.Segments {
		if s <= 0 {
			return fmt.Errorf("%w: %q segment %d is %s", ErrInvalidProgram, p.Name, i, s)
		}
		if s > math.MaxInt64-total {
			return fmt.Errorf("%w: %q segments overflow", ErrInvalidProgram, p.Name)
		}
		total += s
	}
	return nil
}

// DefaultCatalog returns the built-in program list.
func DefaultCatalog() []Program {
	seg := func(sizes ...float64) []ledger.Size {
		out := make([]ledger.Size, len(sizes))
		for i, s := range sizes {
			out[i] = ledger.FromMiB(s)
		}
		return out
	}
	return []Program{
		{Name: "Chrome", Segments: seg(0.5, 0.2)},
		{Name: "VSCode", Segments: seg(0.8, 0.2)},
		{Name: "Spotify", Segments: seg(0.4, 0.1)},
		{Name: "Discord", Segments: seg(0.6, 0.15)},
		{Name: "Minecraft", Segments: seg(1.2, 0.5)},
	}
}

// Catalog is the ordered list of programs available for placement. Names
// are unique under Unicode case folding.
type Catalog struct {
	programs []Program
	fold     cases.Caser
}

// NewCatalog builds a catalog from programs, rejecting invalid or duplicate entries.
func NewCatalog(programs []Program) (*Catalog, error) {
	c := &Catalog{fold: cases.Fold()}
	for _, p := range programs {
		if err := c.add(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends a single-segment program of the given size.
func (c *Catalog) Add(name string, size ledger.Size) (Program, error) {
	p := Program{Name: strings.TrimSpace(name), Segments: []ledger.Size{size}}
	if err := c.add(p); err != nil {
		return Program{}, err
	}
	return p, nil
}

func (c *Catalog) add(p Program) error {
	if err := p.validate(); err != nil {
		return err
	}
	if existing, ok := c.Find(p.Name); ok {
		return fmt.Errorf("%w: %q (as %q)", ErrDuplicateProgram, p.Name, existing.Name)
	}
	p.Segments = slices.Clone(p.Segments)
	c.programs = append(c.programs, p)
	return nil
}

// Find looks up a program by name, ignoring case.
func (c *Catalog) Find(name string) (Program, bool) {
	key := c.fold.String(strings.TrimSpace(name))
	for _, p := range c.programs {
		if c.fold.String(p.Name) == key {
			return p, true
		}
	}
	return Program{}, false
}

// List returns the programs in insertion order.
func (c *Catalog) List() []Program {
	out := make([]Program, len(c.programs))
	for i, p := range c.programs {
		out[i] = Program{Name: p.Name, Segments: slices.Clone(p.Segments)}
	}
	return out
}

// Len returns the number of programs.
func (c *Catalog) Len() int { return len(c.programs) }
