package loader

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/arthur-debert/stencil/pkg/types"
)

// validate runs manifest self-validation. Errors make a definition
// uncacheable and block generation; warnings are advisory.
func (l *Loader) validate(def *types.TemplateDefinition) *types.TemplateValidation {
	v := &types.TemplateValidation{}

	if def.Name == "" {
		v.AddError("manifest is missing required field \"name\"")
	}
	if def.Version == "" {
		v.AddError("manifest is missing required field \"version\"")
	} else if !semver.IsValid(canonicalVersion(def.Version)) {
		v.AddWarningf("version %q is not semantic versioning", def.Version)
	}

	if def.Description == "" {
		v.AddWarning("manifest has no description")
	}

	if def.MinVersion != "" {
		min := canonicalVersion(def.MinVersion)
		if !semver.IsValid(min) {
			v.AddWarningf("minVersion %q is not semantic versioning", def.MinVersion)
		} else if l.engineVersion != "" && semver.Compare(min, canonicalVersion(l.engineVersion)) > 0 {
			v.AddWarningf("template requires engine %s or newer, running %s", def.MinVersion, l.engineVersion)
		}
	}

	for i := range def.Variables {
		spec := &def.Variables[i]

		if spec.Name == "" {
			v.AddErrorf("variable %d is missing a name", i)
		}
		if spec.Type == "" {
			v.AddErrorf("variable %q is missing a type", spec.Name)
		} else if !types.ValidVariableType(spec.Type) {
			v.AddErrorf("variable %q has unknown type %q", spec.Name, spec.Type)
		}
		if spec.Pattern != "" {
			if _, err := regexp.Compile(spec.Pattern); err != nil {
				v.AddErrorf("variable %q has malformed pattern %q: %v", spec.Name, spec.Pattern, err)
			}
		}
	}

	for i := range def.Files {
		mapping := &def.Files[i]

		if mapping.Source == "" {
			v.AddErrorf("file mapping %d is missing a source", i)
		}
		if mapping.Target == "" {
			v.AddErrorf("file mapping %d is missing a target", i)
		}

		// Placeholder-bearing sources resolve at generation time; only
		// literal paths can be checked now.
		if mapping.Source != "" && !strings.Contains(mapping.Source, "{{") {
			if _, err := l.fs.Stat(filepath.Join(def.Path, mapping.Source)); err != nil {
				v.AddWarningf("file mapping source %q does not exist in the template", mapping.Source)
			}
		}
	}

	for i, hook := range def.Hooks {
		if hook.Phase == "" {
			v.AddErrorf("hook %d is missing a phase", i)
		} else if !types.ValidHookPhase(hook.Phase) {
			v.AddErrorf("hook %d has unknown phase %q", i, hook.Phase)
		}
		if hook.Command == "" {
			v.AddErrorf("hook %d is missing a command", i)
		}
	}

	for _, dep := range def.Dependencies {
		if _, err := l.fs.Stat(filepath.Join(l.root, dep)); err != nil {
			v.AddWarningf("dependency %q is not present under the templates root", dep)
		}
	}

	return v
}

// canonicalVersion adds the v prefix x/mod/semver expects
func canonicalVersion(s string) string {
	if strings.HasPrefix(s, "v") {
		return s
	}
	return "v" + s
}
