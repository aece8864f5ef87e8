package generate

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/fileops"
	"github.com/arthur-debert/stencil/pkg/types"
)

// binarySniffLen is how much of a file is inspected for NUL bytes
// before transformation, matching http.DetectContentType's window.
const binarySniffLen = 512

// processMapping handles one file mapping. Returning an error fails
// the mapping; the caller downgrades it to a warning.
func (g *Generator) processMapping(r *run, m *types.FileMapping) error {
	target := g.renderer.RenderPath(m.Target, r.vars)

	if m.Condition != "" && !conditionMet(m.Condition, r.vars) {
		r.res.Skipped = append(r.res.Skipped, target)
		g.logger.Debug().
			Str("target", target).
			Str("condition", m.Condition).
			Msg("condition not met, skipping")
		return nil
	}

	source := g.renderer.RenderPath(m.Source, r.vars)
	abs := g.sourcePath(r.def, source)

	info, err := g.fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			r.res.Warnings = append(r.res.Warnings,
				fmt.Sprintf("source %s does not exist", source))
			r.res.Skipped = append(r.res.Skipped, target)
			return nil
		}
		return errors.Wrapf(err, errors.ErrExecutionFailure,
			"failed to stat source %s", source)
	}

	if info.IsDir() {
		if !m.Recursive {
			r.res.Warnings = append(r.res.Warnings,
				fmt.Sprintf("source %s is a directory, set recursive to copy it", source))
			r.res.Skipped = append(r.res.Skipped, target)
			return nil
		}
		return g.walkDir(r, m, abs, target, "")
	}

	return g.materializeFile(r, m, abs, target)
}

// walkDir materializes a directory source depth-first in lexicographic
// order. rel is the slash-relative path inside the source directory,
// used both for glob matching and, rendered, for the target path.
func (g *Generator) walkDir(r *run, m *types.FileMapping, absDir, dstBase, rel string) error {
	entries, err := g.fs.ReadDir(absDir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExecutionFailure,
			"failed to read template directory %s", absDir)
	}

	for _, entry := range entries {
		entryRel := path.Join(rel, entry.Name())
		absEntry := filepath.Join(absDir, entry.Name())

		if entry.IsDir() {
			if err := g.walkDir(r, m, absEntry, dstBase, entryRel); err != nil {
				return err
			}
			continue
		}

		dstRel := path.Join(dstBase, g.renderer.RenderPath(entryRel, r.vars))
		if !included(r.def, entryRel) {
			r.res.Skipped = append(r.res.Skipped, dstRel)
			continue
		}

		if err := g.materializeFile(r, m, absEntry, dstRel); err != nil {
			return err
		}
	}
	return nil
}

// materializeFile renders or copies one source file to its
// destination-relative target. Dry-run stops after computing the
// content, before hooks and writes.
func (g *Generator) materializeFile(r *run, m *types.FileMapping, absSrc, dstRel string) error {
	if out := r.validator.Validate(dstRel); !out.Valid {
		return errors.Newf(errors.ErrInvalidInput,
			"target %s is invalid: %s", dstRel, out.Reason)
	}

	data, err := g.fs.ReadFile(absSrc)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExecutionFailure,
			"failed to read source %s", absSrc)
	}

	content := data
	if m.ShouldTransform() && !isBinary(data) {
		content = []byte(g.renderer.Render(string(data), r.vars))
	}

	if r.opts.DryRun {
		r.res.Generated = append(r.res.Generated, dstRel)
		return nil
	}

	if r.opts.FileHooks != nil {
		if err := r.opts.FileHooks(types.PhasePreFile, dstRel); err != nil {
			return errors.Wrapf(err, errors.ErrExecutionFailure,
				"pre-file hook failed for %s", dstRel)
		}
	}

	wopts := fileops.OpOptions{}
	if mode, ok := m.Mode(); ok {
		wopts.Mode = mode
	}
	wres := r.ops.Write(dstRel, content, wopts)
	if !wres.Success {
		return wres.Err
	}
	r.res.Generated = append(r.res.Generated, dstRel)

	if r.opts.FileHooks != nil {
		if err := r.opts.FileHooks(types.PhasePostFile, dstRel); err != nil {
			return errors.Wrapf(err, errors.ErrExecutionFailure,
				"post-file hook failed for %s", dstRel)
		}
	}
	return nil
}

// included applies the manifest's exclude and include globs to one
// slash-relative file path. Excludes always win; a non-empty include
// list turns into an allowlist. Patterns match against the full
// relative path and against the base name, so "*.sol" catches nested
// files too.
func included(def *types.TemplateDefinition, rel string) bool {
	base := path.Base(rel)
	for _, pat := range def.Exclude {
		if matchGlob(pat, rel, base) {
			return false
		}
	}
	if len(def.Include) > 0 {
		for _, pat := range def.Include {
			if matchGlob(pat, rel, base) {
				return true
			}
		}
		return false
	}
	return true
}

func matchGlob(pat, rel, base string) bool {
	if ok, err := path.Match(pat, rel); err == nil && ok {
		return true
	}
	if ok, err := path.Match(pat, base); err == nil && ok {
		return true
	}
	return false
}

// conditionMet evaluates a mapping condition, a bare variable name
// optionally negated with a leading "!".
func conditionMet(cond string, vars map[string]interface{}) bool {
	name := strings.TrimSpace(cond)
	negate := strings.HasPrefix(name, "!")
	if negate {
		name = strings.TrimSpace(strings.TrimPrefix(name, "!"))
	}
	met := truthy(vars[name])
	if negate {
		met = !met
	}
	return met
}

// truthy follows the manifest condition semantics: nil, false, zero,
// empty string and empty composites are falsy, everything else truthy.
func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case float32:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case []interface{}:
		return len(x) > 0
	case map[string]interface{}:
		return len(x) > 0
	}
	return true
}

// isBinary reports whether the first 512 bytes contain a NUL byte.
// Binary sources are copied verbatim even under transform.
func isBinary(data []byte) bool {
	n := len(data)
	if n > binarySniffLen {
		n = binarySniffLen
	}
	return bytes.IndexByte(data[:n], 0) >= 0
}
