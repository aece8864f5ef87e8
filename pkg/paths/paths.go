// Package paths provides centralized path handling for stencil.
// It implements XDG Base Directory specification compliance for the
// locations stencil owns (templates root, backup store, config and log
// files) and the sandbox validation used before any file mutation.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/stencil/pkg/errors"
)

// Environment variable names
const (
	// EnvTemplatesRoot overrides the templates root directory
	EnvTemplatesRoot = "STENCIL_TEMPLATES_ROOT"

	// EnvDataDir overrides the XDG data directory for stencil
	EnvDataDir = "STENCIL_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for stencil
	EnvConfigDir = "STENCIL_CONFIG_DIR"
)

// Default directories and files
const (
	// StencilDirName is the directory name for stencil-specific files
	StencilDirName = "stencil"

	// TemplatesDir is the subdirectory holding template directories
	TemplatesDir = "templates"

	// BackupsDir is the subdirectory holding backup records and blobs
	BackupsDir = "backups"

	// ManifestName is the primary (JSON) manifest file name
	ManifestName = "stencil.json"

	// ManifestNameYAML is the alternative YAML manifest file name
	ManifestNameYAML = "stencil.yaml"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "stencil.log"
)

// Paths provides centralized path management for stencil
type Paths interface {
	TemplatesRoot() string
	TemplatePath(name string) string
	DataDir() string
	ConfigDir() string
	StateDir() string
	BackupsDir() string
	ConfigFilePath() string
	LogFilePath() string
}

type paths struct {
	templatesRoot string
	xdgData       string
	xdgConfig     string
	xdgState      string
}

// New creates a new Paths instance with the given templates root.
// If templatesRoot is empty, it is determined from STENCIL_TEMPLATES_ROOT
// or falls back to <data dir>/templates.
func New(templatesRoot string) (Paths, error) {
	p := &paths{}
	p.setupXDGDirs()

	switch {
	case templatesRoot != "":
		p.templatesRoot = expandHome(templatesRoot)
	case os.Getenv(EnvTemplatesRoot) != "":
		p.templatesRoot = expandHome(os.Getenv(EnvTemplatesRoot))
	default:
		p.templatesRoot = filepath.Join(p.xdgData, TemplatesDir)
	}

	absRoot, err := filepath.Abs(p.templatesRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput,
			"failed to resolve templates root %s", p.templatesRoot)
	}
	p.templatesRoot = absRoot

	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, StencilDirName)
	}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, StencilDirName)
	}

	// XDG state, falling back to ~/.local/state when the variable is unset
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, StencilDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.xdgState = filepath.Join(homeDir, ".local", "state", StencilDirName)
	}
}

func (p *paths) TemplatesRoot() string {
	return p.templatesRoot
}

func (p *paths) TemplatePath(name string) string {
	return filepath.Join(p.templatesRoot, name)
}

func (p *paths) DataDir() string {
	return p.xdgData
}

func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

func (p *paths) StateDir() string {
	return p.xdgState
}

func (p *paths) BackupsDir() string {
	return filepath.Join(p.xdgData, BackupsDir)
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// expandHome expands a leading ~ to the user's home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
