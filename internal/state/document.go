// Package state converts a simulation session to and from its persisted
// JSON form and repairs documents that break the ledger invariants.
//
// Document layout:
//
//	{
//	  "version": "1.0.0",
//	  "programs": [{"name": "Chrome", "segments": [0.5, 0.2]}, ...],
//	  "ledgers": {
//	    "no_first": [{"start": 0, "size": 15, "free": true},
//	                 {"start": 15, "size": 1, "free": false, "programName": "OS", "reserved": true}],
//	    ...
//	  }
//	}
//
// Sizes are floating MiB. Ledger keys are sim.Variant keys.
package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/joshuapare/partsim/mem/ledger"
	"github.com/joshuapare/partsim/sim"
)

// Version is the document schema version written by this package.
const Version = "1.0.0"

// supported accepts every 1.x document.
var supported = mustConstraint("^1.0.0")

var (
	// ErrUnsupportedVersion indicates a document written by an incompatible schema.
	ErrUnsupportedVersion = errors.New("state: unsupported document version")

	// ErrCorruptState indicates a document that cannot be repaired.
	ErrCorruptState = errors.New("state: corrupt document")
)

// Document is the persisted form of a session.
type Document struct {
	Version  string                    `json:"version"`
	Programs []ProgramRecord           `json:"programs"`
	Ledgers  map[string][]RegionRecord `json:"ledgers"`
}

// ProgramRecord is a persisted catalog entry.
type ProgramRecord struct {
	Name     string    `json:"name"`
	Segments []float64 `json:"segments"`
}

// RegionRecord is a persisted region.
type RegionRecord struct {
	Start       float64 `json:"start"`
	Size        float64 `json:"size"`
	Free        bool    `json:"free"`
	ProgramName string  `json:"programName,omitempty"`
	SegIndex    *int    `json:"segIndex,omitempty"`
	Reserved    bool    `json:"reserved,omitempty"`
}

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// Capture converts a session to a document.
func Capture(s *sim.Session) (Document, error) {
	doc := Document{
		Version: Version,
		Ledgers: make(map[string][]RegionRecord, len(sim.Variants())),
	}

	for _, p := range s.Catalog().List() {
		rec := ProgramRecord{Name: p.Name, Segments: make([]float64, len(p.Segments))}
		for i, seg := range p.Segments {
			rec.Segments[i] = seg.MiBs()
		}
		doc.Programs = append(doc.Programs, rec)
	}

	for _, v := range sim.Variants() {
		snap, err := s.Snapshot(v)
		if err != nil {
			return Document{}, err
		}
		doc.Ledgers[v.Key()] = EncodeRegions(snap)
	}
	return doc, nil
}

// EncodeRegions converts regions to records.
func EncodeRegions(regions []ledger.Region) []RegionRecord {
	out := make([]RegionRecord, len(regions))
	for i, r := range regions {
		rec := RegionRecord{Start: r.Start.MiBs(), Size: r.Size.MiBs(), Free: r.IsFree()}
		if owner, ok := r.Owner(); ok {
			rec.ProgramName = owner.Program
			rec.Reserved = owner.Reserved
			if !owner.Reserved {
				seg := owner.Segment
				rec.SegIndex = &seg
			}
		}
		out[i] = rec
	}
	return out
}

// DecodeRegions converts records to regions as-is, without repair. An
// occupied record without a program name decodes as free, and one named
// after the reserved program decodes as reserved. Starts and sizes that are
// not finite or do not fit a ledger.Size yield ErrCorruptState.
func DecodeRegions(records []RegionRecord) ([]ledger.Region, error) {
	out := make([]ledger.Region, len(records))
	for i, rec := range records {
		start, err := ledger.ParseMiB(rec.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: region %d start: %w", ErrCorruptState, i, err)
		}
		size, err := ledger.ParseMiB(rec.Size)
		if err != nil {
			return nil, fmt.Errorf("%w: region %d size: %w", ErrCorruptState, i, err)
		}
		switch {
		case rec.Free || (rec.ProgramName == "" && !rec.Reserved):
			out[i] = ledger.FreeRegion(start, size)
		case rec.Reserved || rec.ProgramName == ledger.ReservedProgram:
			name := rec.ProgramName
			if name == "" {
				name = ledger.ReservedProgram
			}
			out[i] = ledger.OccupiedRegion(start, size, ledger.Owner{Program: name, Reserved: true})
		default:
			owner := ledger.Owner{Program: rec.ProgramName}
			if rec.SegIndex != nil {
				owner.Segment = *rec.SegIndex
			}
			out[i] = ledger.OccupiedRegion(start, size, owner)
		}
	}
	return out, nil
}

// Marshal encodes doc as indented JSON.
func Marshal(doc Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal decodes a document and checks its version. A document with no
// version is treated as the current version.
func Unmarshal(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	if doc.Version == "" {
		doc.Version = Version
	}

	v, err := semver.NewVersion(doc.Version)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, doc.Version, err)
	}
	if !supported.Check(v) {
		return Document{}, fmt.Errorf("%w: %s (want %s)", ErrUnsupportedVersion, v, supported)
	}
	return doc, nil
}
