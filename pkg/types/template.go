package types

import (
	"io/fs"
	"strconv"
	"strings"
)

// TemplateDefinition is the parsed manifest of one template directory.
// Loaded once per name and cached by the loader when self-validation
// reports zero errors.
type TemplateDefinition struct {
	Name        string   `json:"name" yaml:"name"`
	Version     string   `json:"version" yaml:"version"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	License     string   `json:"license,omitempty" yaml:"license,omitempty"`
	Repository  string   `json:"repository,omitempty" yaml:"repository,omitempty"`
	Homepage    string   `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	MinVersion  string   `json:"minVersion,omitempty" yaml:"minVersion,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	Variables    []VariableSpec `json:"variables,omitempty" yaml:"variables,omitempty"`
	Files        []FileMapping  `json:"files,omitempty" yaml:"files,omitempty"`
	Hooks        []HookSpec     `json:"hooks,omitempty" yaml:"hooks,omitempty"`
	Dependencies []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Include      []string       `json:"include,omitempty" yaml:"include,omitempty"`
	Exclude      []string       `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// Path is the absolute template directory, set by the loader.
	Path string `json:"-" yaml:"-"`

	// Validation holds the self-validation outcome, set by the loader.
	Validation *TemplateValidation `json:"-" yaml:"-"`
}

// Variable returns the spec declared under the given name, or nil.
func (d *TemplateDefinition) Variable(name string) *VariableSpec {
	for i := range d.Variables {
		if d.Variables[i].Name == name {
			return &d.Variables[i]
		}
	}
	return nil
}

// HooksForPhase returns the hooks declared for one phase, in declaration order.
func (d *TemplateDefinition) HooksForPhase(phase HookPhase) []HookSpec {
	var out []HookSpec
	for _, h := range d.Hooks {
		if h.Phase == phase {
			out = append(out, h)
		}
	}
	return out
}

// Summary condenses a definition for listing.
func (d *TemplateDefinition) Summary() *TemplateSummary {
	valid := d.Validation == nil || d.Validation.Valid()
	return &TemplateSummary{
		Name:         d.Name,
		Version:      d.Version,
		Description:  d.Description,
		Tags:         d.Tags,
		Dependencies: d.Dependencies,
		Valid:        valid,
		Path:         d.Path,
	}
}

// TemplateSummary is the listing view of a template.
type TemplateSummary struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Valid        bool     `json:"valid"`
	Path         string   `json:"path,omitempty"`
}

// FileMapping translates one template-relative source into one
// destination-relative target. Source and target may both contain
// placeholders.
type FileMapping struct {
	Source      string `json:"source" yaml:"source"`
	Target      string `json:"target" yaml:"target"`
	Transform   *bool  `json:"transform,omitempty" yaml:"transform,omitempty"`
	Recursive   bool   `json:"recursive,omitempty" yaml:"recursive,omitempty"`
	Permissions string `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Condition   string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// ShouldTransform reports whether content goes through variable
// substitution. Only an explicit transform:false turns it off.
func (m *FileMapping) ShouldTransform() bool {
	return m.Transform == nil || *m.Transform
}

// Mode parses the declared permission bits (octal string, e.g. "0755").
// Returns (0, false) when no permissions are declared.
func (m *FileMapping) Mode() (fs.FileMode, bool) {
	if m.Permissions == "" {
		return 0, false
	}
	s := strings.TrimPrefix(m.Permissions, "0o")
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, false
	}
	return fs.FileMode(n), true
}

// HookPhase names one of the four lifecycle points around generation.
type HookPhase string

const (
	PhasePreGenerate  HookPhase = "pre-generate"
	PhasePostGenerate HookPhase = "post-generate"
	PhasePreFile      HookPhase = "pre-file"
	PhasePostFile     HookPhase = "post-file"
)

// ValidHookPhase reports whether p is one of the four known phases.
func ValidHookPhase(p HookPhase) bool {
	switch p {
	case PhasePreGenerate, PhasePostGenerate, PhasePreFile, PhasePostFile:
		return true
	}
	return false
}

// HookSpec declares one external command tied to a lifecycle phase.
// Timeout is in seconds; zero means the executor default.
type HookSpec struct {
	Phase           HookPhase         `json:"phase" yaml:"phase"`
	Command         string            `json:"command" yaml:"command"`
	Cwd             string            `json:"cwd,omitempty" yaml:"cwd,omitempty"`
	Env             map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Timeout         int               `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	ContinueOnError bool              `json:"continueOnError,omitempty" yaml:"continueOnError,omitempty"`
}
