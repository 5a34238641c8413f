package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/shadowcore/types"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shadowcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "local", cfg.UserID)
	assert.Equal(t, 50, cfg.Balance.LogTail)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesAndMergesBalance(t *testing.T) {
	path := writeFile(t, `
game_dir: games/lantern
user: robin
seed: 42
log_level: debug
balance:
  illuminate_damage: 6
  enemy_delay: 250ms
  costs:
    ILLUMINATE: {lp: 3}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "games/lantern", cfg.GameDir)
	assert.Equal(t, "robin", cfg.UserID)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 6, cfg.Balance.IlluminateDamage)
	assert.Equal(t, 250*time.Millisecond, cfg.Balance.EnemyDelay)
	assert.Equal(t, types.ActionCost{LP: 3}, cfg.Balance.Costs[types.ActionIlluminate])
	// Untouched entries keep their defaults.
	assert.Equal(t, types.ActionCost{SP: 3}, cfg.Balance.Costs[types.ActionEmbrace])
	assert.Equal(t, 4, cfg.Balance.ReflectHeal)

	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "balance: [not a map"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SHADOWCORE_SEED", "7")
	t.Setenv("SHADOWCORE_USER", "sam")
	t.Setenv("SHADOWCORE_HISTORY_DB", "/tmp/h.db")
	t.Setenv("SHADOWCORE_ENEMY_DELAY", "2s")

	cfg, err := LoadWithEnv(writeFile(t, "user: robin\nsave_dir: saves\n"))
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, "sam", cfg.UserID)
	assert.Equal(t, "/tmp/h.db", cfg.HistoryDB)
	assert.Equal(t, 2*time.Second, cfg.Balance.EnemyDelay)
	assert.Equal(t, "saves", cfg.SaveDir, "unset variables keep file values")
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv("SHADOWCORE_SEED", "not-a-number")
	cfg := Default()
	err := ApplyEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.UserID = " "
	cfg.LogLevel = "loud"
	cfg.Balance.LogTail = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user")
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "log_tail")
}
