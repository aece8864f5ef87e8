// Package generate materializes a template into a destination
// directory. It composes the loader, the renderer, and the file
// operation layer: every write goes through a validator and a manager
// rooted at the destination, so traversal attempts are rejected and
// overwrites are backed up.
//
// Generation is a small state machine: load, validate bindings, check
// the destination, process mappings, report. Failures in the first
// three states are fatal; a failing mapping is downgraded to a warning
// and the remaining mappings still run.
package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/stencil/pkg/backup"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/fileops"
	"github.com/arthur-debert/stencil/pkg/hooks"
	"github.com/arthur-debert/stencil/pkg/loader"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/render"
	"github.com/arthur-debert/stencil/pkg/types"
)

// FileHookFunc is invoked around each materialized file with the
// destination-relative path. An error from the pre-file phase fails
// that mapping before anything is written.
type FileHookFunc func(phase types.HookPhase, relPath string) error

// Options controls one generation run.
type Options struct {
	// Destination is the directory files are generated into.
	Destination string

	// Variables are the caller's bindings, merged with declared defaults.
	Variables map[string]interface{}

	// DryRun computes the full result with zero filesystem mutation.
	DryRun bool

	// Overwrite permits generating into an existing destination.
	Overwrite bool

	// UseCache lets the loader serve a previously validated definition.
	UseCache bool

	// FileHooks, when set, runs around each file write.
	FileHooks FileHookFunc
}

// Result reports one generation run.
type Result struct {
	TemplateName string         `json:"templateName"`
	Version      string         `json:"version,omitempty"`
	Destination  string         `json:"destination"`
	DryRun       bool           `json:"dryRun,omitempty"`
	Generated    []string       `json:"generated,omitempty"`
	Skipped      []string       `json:"skipped,omitempty"`
	Warnings     []string       `json:"warnings,omitempty"`
	HookResults  []hooks.Result `json:"hookResults,omitempty"`
	Duration     time.Duration  `json:"duration"`
	Success      bool           `json:"success"`
}

// Generator materializes templates.
type Generator struct {
	fs       types.FS
	loader   *loader.Loader
	renderer *render.Renderer
	backups  *backup.Manager
	logger   zerolog.Logger
}

// New creates a Generator. The backup manager is shared with the rest
// of the engine so restores see one index.
func New(fsys types.FS, ldr *loader.Loader, backups *backup.Manager) *Generator {
	return &Generator{
		fs:       fsys,
		loader:   ldr,
		renderer: render.New(),
		backups:  backups,
		logger:   logging.GetLogger("generate"),
	}
}

// run carries the per-call state through the mapping loop.
type run struct {
	def       *types.TemplateDefinition
	vars      map[string]interface{}
	opts      Options
	validator *paths.Validator
	ops       *fileops.Manager
	res       *Result
}

// Generate materializes the named template into opts.Destination. The
// returned Result is non-nil whenever the template name resolves;
// Success is false only when a fatal state raised, mapping-level
// failures surface as warnings.
func (g *Generator) Generate(ctx context.Context, name string, opts Options) (*Result, error) {
	start := time.Now()
	res := &Result{
		TemplateName: name,
		Destination:  opts.Destination,
		DryRun:       opts.DryRun,
	}
	defer func() { res.Duration = time.Since(start) }()

	fail := func(err error) (*Result, error) {
		res.Success = false
		return res, err
	}

	// LOAD
	def, err := g.loader.Load(name, opts.UseCache)
	if err != nil {
		return fail(err)
	}
	res.Version = def.Version

	// VALIDATE
	if def.Validation != nil && !def.Validation.Valid() {
		return fail(errors.Newf(errors.ErrInvalidInput,
			"template %q is not valid: %s", name, strings.Join(def.Validation.Errors, "; ")))
	}
	vars, err := bindVariables(def, opts.Variables)
	if err != nil {
		return fail(err)
	}

	if opts.Destination == "" {
		return fail(errors.New(errors.ErrInvalidInput, "destination cannot be empty"))
	}

	// CHECK-DESTINATION
	if !opts.DryRun {
		if err := g.checkDestination(opts); err != nil {
			return fail(err)
		}
	}

	validator, err := paths.NewValidator(opts.Destination)
	if err != nil {
		return fail(err)
	}

	r := &run{
		def:       def,
		vars:      vars,
		opts:      opts,
		validator: validator,
		res:       res,
	}
	if !opts.DryRun {
		r.ops = fileops.NewManager(g.fs, validator, g.backups)
	}

	g.logger.Info().
		Str("template", name).
		Str("version", def.Version).
		Str("destination", opts.Destination).
		Bool("dryRun", opts.DryRun).
		Int("mappings", len(def.Files)).
		Msg("generating")

	// PROCESS-MAPPINGS
	for i := range def.Files {
		if ctx.Err() != nil {
			return fail(errors.Wrap(ctx.Err(), errors.ErrExecutionFailure, "generation cancelled"))
		}

		m := &def.Files[i]
		if err := g.processMapping(r, m); err != nil {
			warning := fmt.Sprintf("mapping %s: %v", m.Source, err)
			res.Warnings = append(res.Warnings, warning)
			g.logger.Warn().Err(err).Str("source", m.Source).Msg("mapping failed")
		}
	}

	// DONE
	res.Success = true
	g.logger.Info().
		Str("template", name).
		Int("generated", len(res.Generated)).
		Int("skipped", len(res.Skipped)).
		Int("warnings", len(res.Warnings)).
		Dur("duration", time.Since(start)).
		Msg("generation complete")
	return res, nil
}

// checkDestination rejects an existing destination without Overwrite,
// then creates the directory. The destination itself sits outside the
// sandbox, everything under it goes through the validator.
func (g *Generator) checkDestination(opts Options) error {
	info, err := g.fs.Stat(opts.Destination)
	if err == nil {
		if !opts.Overwrite {
			return errors.Newf(errors.ErrInvalidInput,
				"destination %s already exists, pass overwrite to generate into it", opts.Destination).
				WithDetail("destination", opts.Destination)
		}
		if !info.IsDir() {
			return errors.Newf(errors.ErrInvalidInput,
				"destination %s exists and is not a directory", opts.Destination)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrExecutionFailure,
			"failed to stat destination %s", opts.Destination)
	}
	if err := g.fs.MkdirAll(opts.Destination, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrExecutionFailure,
			"failed to create destination %s", opts.Destination)
	}
	return nil
}

// bindVariables resolves the caller's bindings against the declared
// specs: defaults fill absent names, string inputs coerce to the
// declared type, constraints run on the coerced value. Every violation
// is collected so the caller sees them all at once. Bindings without a
// declaration pass through untouched.
func bindVariables(def *types.TemplateDefinition, supplied map[string]interface{}) (map[string]interface{}, error) {
	bound := make(map[string]interface{}, len(supplied)+len(def.Variables))
	for k, v := range supplied {
		bound[k] = v
	}

	var violations []string
	for i := range def.Variables {
		spec := &def.Variables[i]

		raw, ok := bound[spec.Name]
		if !ok {
			if !spec.HasDefault() {
				if spec.Required {
					violations = append(violations,
						fmt.Sprintf("required variable %q is not bound", spec.Name))
				}
				continue
			}
			raw = spec.Default
		}

		coerced, err := spec.Coerce(raw)
		if err != nil {
			violations = append(violations, err.Error())
			continue
		}
		if err := spec.Validate(coerced); err != nil {
			violations = append(violations, err.Error())
			continue
		}
		bound[spec.Name] = coerced
	}

	if len(violations) > 0 {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"variable validation failed: %s", strings.Join(violations, "; "))
	}
	return bound, nil
}

// sourcePath resolves a rendered source inside the template directory.
func (g *Generator) sourcePath(def *types.TemplateDefinition, rendered string) string {
	return filepath.Join(def.Path, rendered)
}
