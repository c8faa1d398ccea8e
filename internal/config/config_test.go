package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2, cfg.Fleet.Vehicles)
	assert.Equal(t, 5.0, cfg.Rate.RPS)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emsnav.yaml")
	data := []byte("addr: \":9090\"\ngraphPath: city.json\nfleet:\n  vehicles: 3\nplanner:\n  workers: 4\n  returnToDepot: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "city.json", cfg.GraphPath)
	assert.Equal(t, 3, cfg.Fleet.Vehicles)
	assert.Equal(t, 4, cfg.Planner.Workers)
	assert.True(t, cfg.Planner.ReturnToDepot)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emsnav.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\n"), 0o600))
	t.Setenv("PORT", "7070")
	t.Setenv("FLEET_VEHICLES", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, 5, cfg.Fleet.Vehicles)
}

func TestLoadRejectsNonPositiveFleet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emsnav.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fleet:\n  vehicles: -1\n"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emsnav.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n bad"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}
