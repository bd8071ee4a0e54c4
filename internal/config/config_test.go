package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/partsim/mem/ledger"
	"github.com/joshuapare/partsim/sim"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 16.0, cfg.CapacityMiB)
	assert.Equal(t, 1.0, cfg.ReservedMiB)
	assert.Equal(t, 0.2, cfg.OverheadMiB)
	assert.Equal(t, "default", cfg.Session)
	assert.False(t, cfg.Log.Enabled)
	require.NoError(t, cfg.Validate())

	opts := cfg.SimOptions()
	assert.Equal(t, sim.DefaultCapacity, opts.Capacity)
	assert.Equal(t, sim.DefaultReserved, opts.Reserved)
	assert.Nil(t, opts.Catalog, "no programs keeps the default catalog")
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partsim.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
capacity_mib = 32
reserved_mib = 2.5
state_path = "/tmp/x.db"

[log]
enabled = true
level = "debug"

[[program]]
name = "Postgres"
segments_mib = [1.5, 1.0]

[[program]]
name = "Redis"
segments_mib = [0.25]
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32.0, cfg.CapacityMiB)
	assert.Equal(t, 2.5, cfg.ReservedMiB)
	assert.Equal(t, 0.2, cfg.OverheadMiB, "absent key keeps its default")
	assert.Equal(t, "/tmp/x.db", cfg.StatePath)
	assert.True(t, cfg.Log.Enabled)
	assert.Equal(t, []ProgramConfig{
		{Name: "Postgres", SegmentsMiB: []float64{1.5, 1}},
		{Name: "Redis", SegmentsMiB: []float64{0.25}},
	}, cfg.Programs)

	opts := cfg.SimOptions()
	assert.Equal(t, 32*ledger.MiB, opts.Capacity)
	require.Len(t, opts.Catalog, 2)
	assert.Equal(t, []ledger.Size{ledger.FromMiB(1.5), ledger.MiB}, opts.Catalog[0].Segments)

	s, err := sim.New(opts)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Catalog().Len())
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"reserved above capacity", "capacity_mib = 4\nreserved_mib = 4"},
		{"zero capacity", "capacity_mib = 0"},
		{"negative overhead", "overhead_mib = -0.1"},
		{"nan capacity", "capacity_mib = nan"},
		{"infinite overhead", "overhead_mib = inf"},
		{"capacity beyond int64", "capacity_mib = 1e13"},
		{"program with infinite segment", "[[program]]\nname = \"X\"\nsegments_mib = [inf]"},
		{"string size", `capacity_mib = "big"`},
		{"empty session", `session = ""`},
		{"program without segments", "[[program]]\nname = \"X\""},
		{"program with bad segment", "[[program]]\nname = \"X\"\nsegments_mib = [0]"},
		{"log flag not bool", "[log]\nenabled = \"yes\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParse_ZeroOverheadReachesSession(t *testing.T) {
	cfg, err := Parse([]byte("overhead_mib = 0"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.OverheadMiB)

	s, err := sim.New(cfg.SimOptions())
	require.NoError(t, err)
	assert.Equal(t, ledger.Size(0), s.Overhead())

	p, ok := s.Catalog().Find("Chrome")
	require.True(t, ok)
	assert.Equal(t, ledger.FromMiB(0.7), p.Total(s.Overhead()))
}

func TestParse_Syntax(t *testing.T) {
	_, err := Parse([]byte("capacity_mib = = 3"))
	require.Error(t, err)
}

func TestEncode_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Programs = []ProgramConfig{{Name: "Vim", SegmentsMiB: []float64{0.1, 0.05}}}

	data, err := cfg.Encode()
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLoggerOptions(t *testing.T) {
	cfg := Default()
	cfg.Log = LogConfig{Enabled: true, Dir: "/tmp/logs", Level: "warn"}

	opts := cfg.LoggerOptions()
	assert.True(t, opts.Enabled)
	assert.Equal(t, "/tmp/logs", opts.LogDir)
	assert.Equal(t, "WARN", opts.Level.String())
}
