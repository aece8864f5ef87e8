// Package loader discovers, parses, self-validates, and caches
// template manifests. A definition with validation errors is still
// returned to the caller so the problems can be reported; only the
// cache is gated on a clean validation.
package loader

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Loader loads template definitions from a templates root directory.
// The name→definition cache is service-owned and mutex-guarded.
type Loader struct {
	fs            types.FS
	root          string
	engineVersion string
	logger        zerolog.Logger

	mu    sync.RWMutex
	cache map[string]*types.TemplateDefinition
}

// New creates a loader over the given templates root. engineVersion is
// compared against manifest minVersion declarations.
func New(fsys types.FS, root, engineVersion string) *Loader {
	return &Loader{
		fs:            fsys,
		root:          root,
		engineVersion: engineVersion,
		logger:        logging.GetLogger("loader"),
		cache:         make(map[string]*types.TemplateDefinition),
	}
}

// Root returns the templates root directory
func (l *Loader) Root() string {
	return l.root
}

// Load resolves <root>/<name>, parses its manifest, and attaches the
// self-validation outcome. With useCache, a previously loaded and
// cleanly validated definition is returned as the same instance;
// useCache false always re-parses and never touches the cache.
func (l *Loader) Load(name string, useCache bool) (*types.TemplateDefinition, error) {
	if err := paths.ValidateTemplateName(name); err != nil {
		return nil, err
	}

	if useCache {
		l.mu.RLock()
		cached, ok := l.cache[name]
		l.mu.RUnlock()
		if ok {
			l.logger.Debug().Str("template", name).Msg("cache hit")
			return cached, nil
		}
	}

	dir := filepath.Join(l.root, name)
	info, err := l.fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "template %q not found under %s", name, l.root)
		}
		return nil, errors.Wrapf(err, errors.ErrInternal, "cannot access template directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrNotFound, "template %q not found under %s", name, l.root)
	}

	def, bothManifests, err := l.parseManifest(name, dir)
	if err != nil {
		return nil, err
	}

	if def.Name == "" || def.Version == "" {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"manifest of template %q must declare name and version", name)
	}

	def.Path = dir
	def.Validation = l.validate(def)
	if bothManifests {
		def.Validation.AddWarning("both stencil.json and stencil.yaml exist, using stencil.json")
	}

	if useCache && def.Validation.Valid() {
		l.mu.Lock()
		l.cache[name] = def
		l.mu.Unlock()
	}

	l.logger.Debug().
		Str("template", name).
		Int("errors", len(def.Validation.Errors)).
		Int("warnings", len(def.Validation.Warnings)).
		Msg("template loaded")

	return def, nil
}

// parseManifest reads stencil.json or, failing that, stencil.yaml
func (l *Loader) parseManifest(name, dir string) (*types.TemplateDefinition, bool, error) {
	jsonPath := filepath.Join(dir, paths.ManifestName)
	yamlPath := filepath.Join(dir, paths.ManifestNameYAML)

	jsonData, jsonErr := l.fs.ReadFile(jsonPath)
	if jsonErr != nil && !os.IsNotExist(jsonErr) {
		return nil, false, errors.Wrapf(jsonErr, errors.ErrInternal, "cannot read %s", jsonPath)
	}

	yamlData, yamlErr := l.fs.ReadFile(yamlPath)
	if yamlErr != nil && !os.IsNotExist(yamlErr) {
		return nil, false, errors.Wrapf(yamlErr, errors.ErrInternal, "cannot read %s", yamlPath)
	}

	hasJSON := jsonErr == nil
	hasYAML := yamlErr == nil

	var def types.TemplateDefinition
	switch {
	case hasJSON:
		if err := json.Unmarshal(jsonData, &def); err != nil {
			return nil, false, errors.Wrapf(err, errors.ErrInvalidInput,
				"template %q has a malformed %s", name, paths.ManifestName)
		}
	case hasYAML:
		if err := yaml.Unmarshal(yamlData, &def); err != nil {
			return nil, false, errors.Wrapf(err, errors.ErrInvalidInput,
				"template %q has a malformed %s", name, paths.ManifestNameYAML)
		}
	default:
		return nil, false, errors.Newf(errors.ErrNotFound,
			"template %q has no manifest (%s or %s)", name, paths.ManifestName, paths.ManifestNameYAML)
	}

	return &def, hasJSON && hasYAML, nil
}

// List enumerates the immediate subdirectories of the templates root
// and returns a summary for every loadable one. Directories that fail
// to load are logged and skipped, never fatal.
func (l *Loader) List() ([]*types.TemplateSummary, error) {
	entries, err := l.fs.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug().Str("root", l.root).Msg("templates root does not exist")
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrInternal, "cannot list templates root %s", l.root)
	}

	var summaries []*types.TemplateSummary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		def, err := l.Load(entry.Name(), true)
		if err != nil {
			l.logger.Warn().Err(err).Str("template", entry.Name()).Msg("skipping unloadable template")
			continue
		}
		summaries = append(summaries, def.Summary())
	}

	return summaries, nil
}

// ClearCache drops the named cache entries, or every entry when no
// names are given.
func (l *Loader) ClearCache(names ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(names) == 0 {
		l.cache = make(map[string]*types.TemplateDefinition)
		return
	}
	for _, name := range names {
		delete(l.cache, name)
	}
}
