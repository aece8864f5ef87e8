// pkg/config/config_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: t.TempDir, t.Setenv
// PURPOSE: Layer precedence: defaults, config file, environment, overrides

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stencilerrors "github.com/arthur-debert/stencil/pkg/errors"
)

// isolate points every XDG location stencil uses at temp dirs so the
// developer's real config cannot leak into assertions. The templates
// root override is removed entirely: an empty value would still reach
// the environment layer and clobber file settings.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("STENCIL_CONFIG_DIR", t.TempDir())
	t.Setenv("STENCIL_DATA_DIR", t.TempDir())
	if v, ok := os.LookupEnv("STENCIL_TEMPLATES_ROOT"); ok {
		require.NoError(t, os.Unsetenv("STENCIL_TEMPLATES_ROOT"))
		t.Cleanup(func() { _ = os.Setenv("STENCIL_TEMPLATES_ROOT", v) })
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Backups.MaxAgeDays)
	assert.Equal(t, 300, cfg.Hooks.TimeoutSeconds)
	assert.False(t, cfg.Hooks.Disabled)
	assert.False(t, cfg.Generate.Overwrite)

	assert.True(t, filepath.IsAbs(cfg.TemplatesRoot))
	assert.Equal(t, "templates", filepath.Base(cfg.TemplatesRoot))
	assert.Equal(t, "backups", filepath.Base(cfg.Backups.Dir))
}

func TestLoad_File(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
templates_root = "/srv/templates"

[backups]
max_age_days = 7

[hooks]
timeout_seconds = 120
disabled = true

[generate]
overwrite = true
`), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/srv/templates", cfg.TemplatesRoot)
	assert.Equal(t, 7, cfg.Backups.MaxAgeDays)
	assert.Equal(t, 120, cfg.Hooks.TimeoutSeconds)
	assert.True(t, cfg.Hooks.Disabled)
	assert.True(t, cfg.Generate.Overwrite)
}

func TestLoad_FileNotFound(t *testing.T) {
	isolate(t)

	_, err := Load("/nope/config.toml", nil)
	require.Error(t, err)
	assert.Equal(t, stencilerrors.ErrNotFound, stencilerrors.GetErrorCode(err))
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[[not toml"), 0644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Equal(t, stencilerrors.ErrInvalidInput, stencilerrors.GetErrorCode(err))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[hooks]
timeout_seconds = 120
`), 0644))

	t.Setenv("STENCIL_HOOKS__TIMEOUT_SECONDS", "60")
	t.Setenv("STENCIL_BACKUPS__MAX_AGE_DAYS", "7")
	t.Setenv("STENCIL_GENERATE__OVERWRITE", "true")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Hooks.TimeoutSeconds, "environment beats the file")
	assert.Equal(t, 7, cfg.Backups.MaxAgeDays)
	assert.True(t, cfg.Generate.Overwrite)
}

func TestLoad_ExplicitOverridesWin(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
templates_root = "/srv/templates"

[hooks]
timeout_seconds = 120
`), 0644))

	t.Setenv("STENCIL_HOOKS__TIMEOUT_SECONDS", "60")

	cfg, err := Load(path, map[string]interface{}{
		"templates_root":        "/flag/templates",
		"hooks.timeout_seconds": 15,
	})
	require.NoError(t, err)

	assert.Equal(t, "/flag/templates", cfg.TemplatesRoot, "overrides beat the file")
	assert.Equal(t, 15, cfg.Hooks.TimeoutSeconds, "overrides beat the environment")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "templates_root", envKey("STENCIL_TEMPLATES_ROOT"))
	assert.Equal(t, "backups.max_age_days", envKey("STENCIL_BACKUPS__MAX_AGE_DAYS"))
	assert.Equal(t, "hooks.disabled", envKey("STENCIL_HOOKS__DISABLED"))
}

func TestDurationHelpers(t *testing.T) {
	cfg := &Config{
		Backups: BackupsConfig{MaxAgeDays: 2},
		Hooks:   HooksConfig{TimeoutSeconds: 90},
	}
	assert.Equal(t, 90*time.Second, cfg.HookTimeout())
	assert.Equal(t, 48*time.Hour, cfg.BackupMaxAge())
}
