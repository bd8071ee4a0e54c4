package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/partsim/internal/state"
	"github.com/joshuapare/partsim/internal/writer"
	"github.com/joshuapare/partsim/mem/ledger"
	"github.com/joshuapare/partsim/sim"
)

func run(t *testing.T, fn func() error) string {
	t.Helper()
	out, err := captureOutput(t, fn)
	require.NoError(t, err, out)
	return out
}

func placeAll(t *testing.T, ctx context.Context, names ...string) {
	t.Helper()
	for _, name := range names {
		run(t, func() error { return runPlace(ctx, []string{name}) })
	}
}

func showJSON(t *testing.T, ctx context.Context) []ledgerView {
	t.Helper()
	jsonOut = true
	defer func() { jsonOut = false }()

	var views []ledgerView
	decodeJSON(t, run(t, func() error { return runShow(ctx) }), &views)
	return views
}

func programsIn(v ledgerView) []string {
	var names []string
	for _, r := range v.Regions {
		if !r.Free && !r.Reserved {
			names = append(names, r.Program)
		}
	}
	return names
}

func TestPlaceCommand(t *testing.T) {
	tests := []struct {
		name           string
		program        string
		variant        string
		wantErr        error
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:        "all variants",
			program:     "Chrome",
			wantContain: []string{"no_first  placed 0.90 MiB at 0.00", "c_worst   placed 0.90 MiB at 0.00"},
		},
		{
			name:           "single variant",
			program:        "minecraft",
			variant:        "c_best",
			wantContain:    []string{"c_best    placed 1.90 MiB"},
			wantNotContain: []string{"no_first"},
		},
		{
			name:    "unknown program",
			program: "Doom",
			wantErr: sim.ErrUnknownProgram,
		},
		{
			name:    "unknown variant",
			program: "Chrome",
			variant: "sideways",
			wantErr: sim.ErrUnknownVariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals(t)
			placeVariant = tt.variant

			output, err := captureOutput(t, func() error {
				return runPlace(context.Background(), []string{tt.program})
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestPlaceThenShowPersists(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()

	placeVariant = "c_best"
	placeAll(t, ctx, "Chrome")
	placeVariant = ""
	placeAll(t, ctx, "Spotify")

	views := showJSON(t, ctx)
	require.Len(t, views, 6)
	for _, v := range views {
		if v.Variant == "c_best" {
			assert.Equal(t, []string{"Chrome", "Spotify"}, programsIn(v))
		} else {
			assert.Equal(t, []string{"Spotify"}, programsIn(v), v.Variant)
		}
		last := v.Regions[len(v.Regions)-1]
		assert.True(t, last.Reserved)
		assert.Equal(t, 16.0, last.End)
	}
}

func TestShowText(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()
	placeAll(t, ctx, "Discord")

	showVariant = "no_worst"
	output := run(t, func() error { return runShow(ctx) })

	assertContains(t, output, []string{
		"Without Compaction - Worst Fit (no_worst)",
		"START", "Discord", "OS (reserved)", "(free)",
		"Used 1.95 MiB of 16.00 MiB (12%)",
	})
	assertNotContains(t, output, []string{"c_best"})
}

func TestReleaseCommand(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()
	placeAll(t, ctx, "Chrome", "VSCode")

	output := run(t, func() error { return runRelease(ctx, []string{"chrome"}) })
	assert.Equal(t, 6, strings.Count(output, "released Chrome"))

	output = run(t, func() error { return runRelease(ctx, []string{"Chrome"}) })
	assert.Equal(t, 6, strings.Count(output, "Chrome is not present"))

	for _, v := range showJSON(t, ctx) {
		assert.Equal(t, []string{"VSCode"}, programsIn(v))
	}
}

func TestCompactAndStats(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()
	placeAll(t, ctx, "Chrome", "Minecraft", "Discord")
	run(t, func() error { return runRelease(ctx, []string{"Minecraft"}) })

	stats := func() []ledgerView {
		jsonOut = true
		defer func() { jsonOut = false }()
		var views []ledgerView
		decodeJSON(t, run(t, func() error { return runStats(ctx) }), &views)
		return views
	}

	for _, v := range stats() {
		assert.Equal(t, 2, v.Metrics.FreeRegions, v.Variant)
		assert.Empty(t, v.Regions)
	}

	compactVariant = "no_first"
	output := run(t, func() error { return runCompact(ctx) })
	assertContains(t, output, []string{"no_first  2 free region(s) -> 1"})

	for _, v := range stats() {
		if v.Variant == "no_first" {
			assert.Equal(t, 1, v.Metrics.FreeRegions)
			assert.InDelta(t, 13.15, v.Metrics.LargestFree, 1e-9)
		} else {
			assert.Equal(t, 2, v.Metrics.FreeRegions, v.Variant)
		}
		assert.Equal(t, 18, v.Metrics.PercentUsed, v.Variant)
	}

	output = run(t, func() error { return runStats(ctx) })
	assertContains(t, output, []string{"VARIANT", "c_worst", "[##"})
}

func TestProgramsCommands(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()

	output := run(t, func() error { return runAddProgram(ctx, []string{"Emacs", "0.35"}) })
	assertContains(t, output, []string{"Added Emacs (0.55 MiB with overhead)"})

	_, err := captureOutput(t, func() error { return runAddProgram(ctx, []string{"emacs", "1"}) })
	require.ErrorIs(t, err, sim.ErrDuplicateProgram)

	_, err = captureOutput(t, func() error { return runAddProgram(ctx, []string{"Vim", "big"}) })
	require.Error(t, err)

	for _, size := range []string{"NaN", "+Inf", "-Inf", "1e13"} {
		_, err = captureOutput(t, func() error { return runAddProgram(ctx, []string{"Vim", size}) })
		require.ErrorIs(t, err, ledger.ErrInvalidSize, size)
	}

	jsonOut = true
	var programs []programView
	decodeJSON(t, run(t, func() error { return runPrograms(ctx) }), &programs)
	jsonOut = false

	require.Len(t, programs, 6)
	assert.Equal(t, "Emacs", programs[5].Name)
	assert.InDelta(t, 0.55, programs[5].Total, 1e-9)

	output = run(t, func() error { return runPrograms(ctx) })
	assertContains(t, output, []string{"Chrome", "[0.5 0.2]", "0.90 MiB", "Emacs"})

	placeAll(t, ctx, "Emacs")
}

func TestResetCommand(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()
	placeAll(t, ctx, "Chrome")
	run(t, func() error { return runAddProgram(ctx, []string{"Emacs", "0.35"}) })

	output := run(t, func() error { return runReset(ctx) })
	assertContains(t, output, []string{"Reset 6 variants"})

	for _, v := range showJSON(t, ctx) {
		assert.Empty(t, programsIn(v))
	}
	placeAll(t, ctx, "Emacs")
}

func TestExportImportRoundTrip(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()
	placeAll(t, ctx, "Chrome", "Spotify")
	path := filepath.Join(t.TempDir(), "exports", "session.json")

	run(t, func() error { return runExport(ctx, []string{path}) })
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := state.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, state.Version, doc.Version)
	assert.Len(t, doc.Ledgers, 6)

	run(t, func() error { return runReset(ctx) })

	cfg.Session = "restored"
	output := run(t, func() error { return runImport(ctx, []string{path}) })
	assertContains(t, output, []string{`Imported`, `session "restored" (0 repair(s))`})

	for _, v := range showJSON(t, ctx) {
		assert.Equal(t, []string{"Chrome", "Spotify"}, programsIn(v), v.Variant)
	}

	output = run(t, func() error { return runSessions(ctx) })
	assertContains(t, output, []string{"* restored", "  test"})
}

func TestExportToSink(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()
	placeAll(t, ctx, "Discord")

	mem := &writer.MemWriter{}
	var gotPath string
	orig := newSink
	newSink = func(path string) writer.Sink {
		gotPath = path
		return mem
	}
	t.Cleanup(func() { newSink = orig })

	output := run(t, func() error { return runExport(ctx, []string{"session.json"}) })
	assertContains(t, output, []string{`Exported session "test" to session.json`})
	assert.Equal(t, "session.json", gotPath)
	assert.Equal(t, 1, mem.Writes)

	doc, err := state.Unmarshal(mem.Buf)
	require.NoError(t, err)
	for key, recs := range doc.Ledgers {
		var names []string
		for _, r := range recs {
			if !r.Free && !r.Reserved {
				names = append(names, r.ProgramName)
			}
		}
		assert.Equal(t, []string{"Discord", "Discord"}, names, key)
	}
}

func TestExportStdout(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()

	output := run(t, func() error { return runExport(ctx, []string{"-"}) })
	_, err := state.Unmarshal([]byte(output))
	require.NoError(t, err)
}

func TestImportRepairs(t *testing.T) {
	resetGlobals(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "version": "1.0.0",
  "ledgers": {
    "no_first": [
      {"start": 0, "size": 2, "free": false, "programName": "Chrome"},
      {"start": 5, "size": 3, "free": true}
    ]
  }
}`), 0644))

	output := run(t, func() error { return runImport(ctx, []string{path}) })
	assertContains(t, output, []string{
		"no_first: PADDED",
		"no_first: INSTALLED_RESERVED",
		"c_worst: INITIALIZED",
	})

	views := showJSON(t, ctx)
	assert.Equal(t, []string{"Chrome"}, programsIn(views[0]))
}

func TestImportRejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"newer schema", `{"version": "2.1.0"}`, state.ErrUnsupportedVersion},
		{"over capacity", `{"ledgers": {"c_first": [{"start": 0, "size": 40, "free": true}]}}`, state.ErrCorruptState},
		{"not json", `ledgers`, state.ErrCorruptState},
		{"wrapping sizes", `{"ledgers": {"no_first": [
			{"start": 0, "size": 5e12, "programName": "A"},
			{"start": 5e12, "size": 5e12, "programName": "B"}]}}`, state.ErrCorruptState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals(t)
			path := filepath.Join(t.TempDir(), "doc.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0644))

			_, err := captureOutput(t, func() error { return runImport(context.Background(), []string{path}) })
			require.ErrorIs(t, err, tt.wantErr)

			_, err = os.Stat(cfg.StatePath)
			assert.True(t, os.IsNotExist(err), "nothing stored on failure")
		})
	}
}

func TestSessionsEmpty(t *testing.T) {
	resetGlobals(t)

	output := run(t, func() error { return runSessions(context.Background()) })
	assertContains(t, output, []string{"No stored sessions"})
}

func TestConfigCommandAndSetup(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	configPath = filepath.Join(dir, "partsim.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("capacity_mib = 32\nreserved_mib = 2.0\n"), 0644))
	statePath = filepath.Join(dir, "alt.db")
	sessionName = "lab"

	require.NoError(t, setup())
	assert.Equal(t, 32.0, cfg.CapacityMiB)
	assert.Equal(t, statePath, cfg.StatePath)
	assert.Equal(t, "lab", cfg.Session)

	output := run(t, func() error { return runConfig() })
	assertContains(t, output, []string{"capacity_mib = 32", `session = "lab"`})

	placeAll(t, context.Background(), "Chrome")
	views := showJSON(t, context.Background())
	assert.Equal(t, 32.0, views[0].Metrics.Capacity)
	assert.Equal(t, 30.0, views[0].Regions[len(views[0].Regions)-1].Start)
}

func TestSetupRejectsBadConfig(t *testing.T) {
	resetGlobals(t)
	configPath = filepath.Join(t.TempDir(), "partsim.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("reserved_mib = 99\n"), 0644))

	require.Error(t, setup())
}
