package main

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/joshuapare/partsim/mem/ledger"
	"github.com/joshuapare/partsim/sim"
)

// JSON views. Sizes are floating MiB, as in exported documents.

type regionView struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Size     float64 `json:"size"`
	Free     bool    `json:"free"`
	Program  string  `json:"program,omitempty"`
	Reserved bool    `json:"reserved,omitempty"`
}

type metricsView struct {
	Capacity    float64 `json:"capacity"`
	Used        float64 `json:"used"`
	Free        float64 `json:"free"`
	FreeRegions int     `json:"freeRegions"`
	LargestFree float64 `json:"largestFree"`
	PercentUsed int     `json:"percentUsed"`
}

type ledgerView struct {
	Variant string       `json:"variant"`
	Title   string       `json:"title"`
	Regions []regionView `json:"regions,omitempty"`
	Metrics metricsView  `json:"metrics"`
}

func newRegionViews(regions []ledger.Region) []regionView {
	return lo.Map(regions, func(r ledger.Region, _ int) regionView {
		v := regionView{Start: r.Start.MiBs(), End: r.End().MiBs(), Size: r.Size.MiBs(), Free: r.IsFree()}
		if owner, ok := r.Owner(); ok {
			v.Program = owner.Program
			v.Reserved = owner.Reserved
		}
		return v
	})
}

func newMetricsView(m ledger.Metrics) metricsView {
	return metricsView{
		Capacity:    m.Capacity.MiBs(),
		Used:        m.Used.MiBs(),
		Free:        m.Free.MiBs(),
		FreeRegions: m.FreeRegions,
		LargestFree: m.LargestFree.MiBs(),
		PercentUsed: m.PercentUsed,
	}
}

func variantHeading(v sim.Variant) string {
	return fmt.Sprintf("%s (%s)", v, v.Key())
}

// printRegions prints the region table, lowest address first.
func printRegions(regions []ledger.Region) {
	printInfo("  %-10s %-10s %-12s %s\n", "START", "END", "SIZE", "OWNER")
	for _, r := range regions {
		owner := "(free)"
		if o, ok := r.Owner(); ok {
			owner = o.Program
			if o.Reserved {
				owner += " (reserved)"
			}
		}
		printInfo("  %-10.2f %-10.2f %-12s %s\n", r.Start.MiBs(), r.End().MiBs(), r.Size, owner)
	}
}

func printMetrics(m ledger.Metrics) {
	printInfo("  Used %s of %s (%d%%), free %s in %d region(s), largest %s\n",
		m.Used, m.Capacity, m.PercentUsed, m.Free, m.FreeRegions, m.LargestFree)
}

// bar renders used/capacity as a fixed-width gauge.
func bar(m ledger.Metrics, width int) string {
	filled := m.PercentUsed * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
