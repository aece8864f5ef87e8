package paths

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
)

// Outcome is the result of validating one raw path against a root.
// Path is set only when Valid; Reason only when not.
type Outcome struct {
	Valid  bool   `json:"valid"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Validator sandboxes arbitrary path strings to a configured root.
// Inputs are normalized and resolved against the root before the
// escape judgement, so a literal ".." that still resolves under the
// root is accepted.
type Validator struct {
	root string
}

// NewValidator creates a Validator anchored at root. The root is made
// absolute; it does not need to exist yet.
func NewValidator(root string) (*Validator, error) {
	if root == "" {
		return nil, errors.New(errors.ErrInvalidInput, "validator root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput,
			"failed to resolve validator root %s", root)
	}
	return &Validator{root: filepath.Clean(abs)}, nil
}

// Root returns the configured root directory.
func (v *Validator) Root() string {
	return v.root
}

// Validate checks one raw path string. Absolute-looking input is
// re-anchored under the root, never accepted verbatim.
func (v *Validator) Validate(raw string) Outcome {
	if raw == "" {
		return invalid("path is empty")
	}
	if strings.Contains(raw, "\x00") {
		return invalid("path contains null bytes")
	}
	if len(raw) > 4096 {
		return invalid("path exceeds maximum length")
	}
	if reason := checkSegments(raw); reason != "" {
		return invalid(reason)
	}

	rel := raw
	if filepath.IsAbs(raw) {
		rel = strings.TrimLeft(filepath.Clean(raw), string(filepath.Separator))
		if rel == "" {
			rel = "."
		}
	}

	resolved := filepath.Join(v.root, rel)
	relToRoot, err := filepath.Rel(v.root, resolved)
	if err != nil || relToRoot == ".." || strings.HasPrefix(relToRoot, ".."+string(filepath.Separator)) {
		return invalid("path escapes the project root")
	}

	return Outcome{Valid: true, Path: resolved}
}

// ValidateBatch validates every path independently; no early exit.
func (v *Validator) ValidateBatch(raws []string) []Outcome {
	outcomes := make([]Outcome, len(raws))
	for i, raw := range raws {
		outcomes[i] = v.Validate(raw)
	}
	return outcomes
}

// IsWithinRoot reports whether the raw path resolves inside the root.
func (v *Validator) IsWithinRoot(raw string) bool {
	return v.Validate(raw).Valid
}

func invalid(reason string) Outcome {
	return Outcome{Valid: false, Reason: reason}
}

// reservedNames are device names some filesystems refuse as path
// segments, checked case-insensitively and ignoring any extension.
var reservedNames = map[string]struct{}{
	"con": {}, "prn": {}, "aux": {}, "nul": {},
	"com1": {}, "com2": {}, "com3": {}, "com4": {}, "com5": {},
	"com6": {}, "com7": {}, "com8": {}, "com9": {},
	"lpt1": {}, "lpt2": {}, "lpt3": {}, "lpt4": {}, "lpt5": {},
	"lpt6": {}, "lpt7": {}, "lpt8": {}, "lpt9": {},
}

// checkSegments validates each path segment for illegal characters and
// reserved names. Navigational segments (".", "..") are left to the
// resolution step.
func checkSegments(raw string) string {
	for _, seg := range strings.Split(filepath.ToSlash(raw), "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		if strings.ContainsAny(seg, ":*?\"<>|") {
			return "path contains invalid characters"
		}
		for _, r := range seg {
			if r < 32 {
				return "path contains control characters"
			}
		}
		base := strings.ToLower(seg)
		if dot := strings.IndexByte(base, '.'); dot > 0 {
			base = base[:dot]
		}
		if _, ok := reservedNames[base]; ok {
			return "path contains a reserved file name"
		}
	}
	return ""
}

// ValidateTemplateName ensures a template name is valid for use in paths.
// Template names must not be empty, contain path separators, be "." or
// "..", or contain special characters that could cause issues.
func ValidateTemplateName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "template name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return errors.New(errors.ErrInvalidInput, "template name cannot contain path separators")
	}

	if name == "." || name == ".." {
		return errors.New(errors.ErrInvalidInput, "template name cannot be '.' or '..'")
	}

	invalidChars := ":*?\"<>|"
	if strings.ContainsAny(name, invalidChars) {
		return errors.Newf(errors.ErrInvalidInput,
			"template name contains invalid characters: %s", invalidChars)
	}

	for _, r := range name {
		if r < 32 {
			return errors.New(errors.ErrInvalidInput,
				"template name contains control characters")
		}
	}

	return nil
}
