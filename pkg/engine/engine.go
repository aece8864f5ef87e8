// Package engine is the composition root of the library surface. It
// owns the long-lived pieces (loader cache, backup index, hook
// executor) and exposes the operations the CLI and embedders call:
// generate, preview, list, inspect, validate, cache and backup access.
package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/stencil/pkg/backup"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/filesystem"
	"github.com/arthur-debert/stencil/pkg/generate"
	"github.com/arthur-debert/stencil/pkg/hooks"
	"github.com/arthur-debert/stencil/pkg/loader"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Config assembles an Engine.
type Config struct {
	// TemplatesRoot is the directory templates are discovered under.
	TemplatesRoot string

	// BackupsDir is where overwrite backups are stored.
	BackupsDir string

	// FS overrides the filesystem, primarily for tests. Nil means the
	// real one.
	FS types.FS

	// HookTimeout bounds each hook; zero means the executor default.
	HookTimeout time.Duration

	// DisableHooks turns off all hook execution.
	DisableHooks bool

	// Version is the engine version templates check minVersion against.
	Version string
}

// Request is one generation call: the generator options plus the
// template name and extra hook environment.
type Request struct {
	Template    string
	Destination string
	Variables   map[string]interface{}
	DryRun      bool
	Overwrite   bool
	UseCache    bool
	ExtraEnv    map[string]string
}

// Engine ties the services together.
type Engine struct {
	cfg      Config
	fs       types.FS
	loader   *loader.Loader
	backups  *backup.Manager
	executor *hooks.Executor
	gen      *generate.Generator
	logger   zerolog.Logger
}

// New builds an Engine from the config. The backups directory is
// created eagerly so a broken location surfaces at startup, not in the
// middle of a generation.
func New(cfg Config) (*Engine, error) {
	if cfg.TemplatesRoot == "" {
		return nil, errors.New(errors.ErrInvalidInput, "templates root cannot be empty")
	}
	if cfg.BackupsDir == "" {
		return nil, errors.New(errors.ErrInvalidInput, "backups directory cannot be empty")
	}

	fsys := cfg.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	backups, err := backup.NewManager(fsys, cfg.BackupsDir)
	if err != nil {
		return nil, err
	}

	ldr := loader.New(fsys, cfg.TemplatesRoot, cfg.Version)

	return &Engine{
		cfg:      cfg,
		fs:       fsys,
		loader:   ldr,
		backups:  backups,
		executor: hooks.NewExecutor(cfg.HookTimeout, nil),
		gen:      generate.New(fsys, ldr, backups),
		logger:   logging.GetLogger("engine"),
	}, nil
}

// Generate materializes req.Template into req.Destination, running
// pre-generate hooks before, per-file hooks around each write, and
// post-generate hooks after. Hook results aggregate into the returned
// Result in execution order. A fatal hook failure returns the
// partially populated result together with the error; a post-generate
// failure keeps the generated file lists intact.
func (e *Engine) Generate(ctx context.Context, req Request) (*generate.Result, error) {
	e.logger.Debug().
		Str("template", req.Template).
		Str("destination", req.Destination).
		Bool("dryRun", req.DryRun).
		Msg("generate requested")

	def, err := e.loader.Load(req.Template, req.UseCache)
	if err != nil {
		return nil, err
	}

	env := e.hookEnv(def, req, "")

	var collected []hooks.Result

	if !e.cfg.DisableHooks {
		hctx := hooks.Context{Dir: e.hookDir(req.Destination), Env: env}
		pre, err := e.executor.ExecutePhase(ctx, def.Hooks, types.PhasePreGenerate, hctx)
		collected = append(collected, pre...)
		if err != nil {
			res := &generate.Result{
				TemplateName: def.Name,
				Version:      def.Version,
				Destination:  req.Destination,
				DryRun:       req.DryRun,
				HookResults:  collected,
			}
			return res, err
		}
	}

	opts := generate.Options{
		Destination: req.Destination,
		Variables:   req.Variables,
		DryRun:      req.DryRun,
		Overwrite:   req.Overwrite,
		UseCache:    req.UseCache,
	}
	if e.wantFileHooks(def) {
		opts.FileHooks = func(phase types.HookPhase, rel string) error {
			fctx := hooks.Context{
				Dir: e.hookDir(req.Destination),
				Env: e.hookEnv(def, req, rel),
			}
			results, err := e.executor.ExecutePhase(ctx, def.Hooks, phase, fctx)
			collected = append(collected, results...)
			return err
		}
	}

	res, genErr := e.gen.Generate(ctx, req.Template, opts)
	if res != nil {
		res.HookResults = collected
	}
	if genErr != nil {
		return res, genErr
	}

	if !e.cfg.DisableHooks {
		hctx := hooks.Context{Dir: e.hookDir(req.Destination), Env: env}
		post, err := e.executor.ExecutePhase(ctx, def.Hooks, types.PhasePostGenerate, hctx)
		res.HookResults = append(res.HookResults, post...)
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

// hookDir picks the working directory for a hook phase. The
// destination is only usable once it exists; before that, and in dry
// runs, hooks run in the process cwd and find the destination in
// STENCIL_DESTINATION.
func (e *Engine) hookDir(dest string) string {
	if _, err := e.fs.Stat(dest); err != nil {
		return ""
	}
	return dest
}

// Preview is Generate forced into dry-run: the full result set is
// computed, nothing is written, and generation hooks still run with
// STENCIL_DRY_RUN=true so scripts can no-op themselves.
func (e *Engine) Preview(ctx context.Context, req Request) (*generate.Result, error) {
	req.DryRun = true
	return e.Generate(ctx, req)
}

// ListTemplates summarizes every loadable template under the root.
func (e *Engine) ListTemplates() ([]*types.TemplateSummary, error) {
	return e.loader.List()
}

// GetTemplate loads a definition through the cache.
func (e *Engine) GetTemplate(name string) (*types.TemplateDefinition, error) {
	return e.loader.Load(name, true)
}

// ValidateTemplate re-parses the template from disk, bypassing the
// cache, and returns only the validation outcome.
func (e *Engine) ValidateTemplate(name string) (*types.TemplateValidation, error) {
	def, err := e.loader.Load(name, false)
	if err != nil {
		return nil, err
	}
	return def.Validation, nil
}

// ClearCache evicts the named templates, or everything when no names
// are given.
func (e *Engine) ClearCache(names ...string) {
	e.loader.ClearCache(names...)
}

// Backups exposes the backup manager for the CLI surface.
func (e *Engine) Backups() *backup.Manager {
	return e.backups
}

// TemplatesRoot returns the configured templates root.
func (e *Engine) TemplatesRoot() string {
	return e.cfg.TemplatesRoot
}

// wantFileHooks reports whether per-file hook wiring is needed at all.
func (e *Engine) wantFileHooks(def *types.TemplateDefinition) bool {
	if e.cfg.DisableHooks {
		return false
	}
	return len(def.HooksForPhase(types.PhasePreFile)) > 0 ||
		len(def.HooksForPhase(types.PhasePostFile)) > 0
}

// hookEnv builds the injected hook environment. ExtraEnv lands last so
// a caller can override the canonical values.
func (e *Engine) hookEnv(def *types.TemplateDefinition, req Request, file string) map[string]string {
	env := map[string]string{
		"STENCIL_TEMPLATE":         def.Name,
		"STENCIL_TEMPLATE_VERSION": def.Version,
		"STENCIL_DESTINATION":      req.Destination,
		"STENCIL_DRY_RUN":          strconv.FormatBool(req.DryRun),
	}
	if file != "" {
		env["STENCIL_FILE"] = file
	}
	for k, v := range req.ExtraEnv {
		env[k] = v
	}
	return env
}
