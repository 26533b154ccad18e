package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":9090"
  cors_origin: "https://example.com"
matcher:
  sigma_z: 6.5
  max_candidates: 8
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "https://example.com", cfg.Server.CORSOrigin)
	assert.InDelta(t, 6.5, cfg.Matcher.SigmaZ, 1e-9)
	assert.Equal(t, 8, cfg.Matcher.MaxCandidates)

	// Untouched fields keep their defaults.
	assert.InDelta(t, 5.0, cfg.Matcher.Beta, 1e-9)
	assert.Equal(t, 5, cfg.Server.ReadTimeoutSec)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
