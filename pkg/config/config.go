package config

import (
	_ "embed"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	stencilerrors "github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// envPrefix namespaces the environment layer. Double underscores nest:
// STENCIL_HOOKS__TIMEOUT_SECONDS maps to hooks.timeout_seconds.
const envPrefix = "STENCIL_"

// Config is the resolved configuration after all layers are merged.
type Config struct {
	TemplatesRoot string         `koanf:"templates_root"`
	Backups       BackupsConfig  `koanf:"backups"`
	Hooks         HooksConfig    `koanf:"hooks"`
	Generate      GenerateConfig `koanf:"generate"`
}

// BackupsConfig controls the backup store.
type BackupsConfig struct {
	Dir        string `koanf:"dir"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// HooksConfig controls hook execution.
type HooksConfig struct {
	TimeoutSeconds int  `koanf:"timeout_seconds"`
	Disabled       bool `koanf:"disabled"`
}

// GenerateConfig holds generation defaults.
type GenerateConfig struct {
	Overwrite bool `koanf:"overwrite"`
}

// HookTimeout returns the per-hook timeout as a duration.
func (c *Config) HookTimeout() time.Duration {
	return time.Duration(c.Hooks.TimeoutSeconds) * time.Second
}

// BackupMaxAge returns the backup retention window as a duration.
func (c *Config) BackupMaxAge() time.Duration {
	return time.Duration(c.Backups.MaxAgeDays) * 24 * time.Hour
}

// rawBytesProvider adapts embedded bytes to the koanf provider interface.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load resolves configuration in four layers, later wins: embedded
// defaults, then the TOML config file, then STENCIL_ environment
// variables, then explicit overrides (dotted keys, typically from CLI
// flags). An empty path means the XDG config file, which may be absent;
// an explicitly named file must exist.
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, stencilerrors.Wrap(err, stencilerrors.ErrInternal,
			"failed to load default configuration")
	}

	cfgPath := path
	if cfgPath == "" {
		p, err := paths.New("")
		if err != nil {
			return nil, err
		}
		cfgPath = p.ConfigFilePath()
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if err := k.Load(file.Provider(cfgPath), toml.Parser()); err != nil {
			return nil, stencilerrors.Wrapf(err, stencilerrors.ErrInvalidInput,
				"failed to parse config file %s", cfgPath)
		}
	} else if path != "" {
		return nil, stencilerrors.Newf(stencilerrors.ErrNotFound,
			"config file %s not found", path)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, stencilerrors.Wrap(err, stencilerrors.ErrInternal,
			"failed to load environment configuration")
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, stencilerrors.Wrap(err, stencilerrors.ErrInternal,
				"failed to apply configuration overrides")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, stencilerrors.Wrap(err, stencilerrors.ErrInvalidInput,
			"failed to decode configuration")
	}

	if err := applyPathDefaults(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps STENCIL_BACKUPS__MAX_AGE_DAYS to backups.max_age_days.
// Single underscores stay, they are part of the key names.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// applyPathDefaults fills empty locations from the XDG layout.
func applyPathDefaults(cfg *Config) error {
	p, err := paths.New(cfg.TemplatesRoot)
	if err != nil {
		return err
	}
	cfg.TemplatesRoot = p.TemplatesRoot()
	if cfg.Backups.Dir == "" {
		cfg.Backups.Dir = p.BackupsDir()
	}
	return nil
}
