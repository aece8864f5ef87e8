// Package render substitutes {{identifier}} and {{identifier.nested}}
// placeholders in strings and paths. Substitution is plain text: values
// are never HTML or code escaped, because targets are source files.
// Unbound references render as the empty string rather than failing.
package render

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// placeholderRe matches {{ident}} and {{ident.seg.seg}} with optional
// interior whitespace. Block and negation markers ({{#x}}, {{/x}},
// {{^x}}) start with a non-identifier character, so they never match
// and pass through verbatim.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)\s*\}\}`)

// Renderer performs placeholder substitution. Compiled path
// expressions for dotted references are cached per instance.
type Renderer struct {
	mu    sync.RWMutex
	exprs map[string]jp.Expr
}

// New creates a renderer
func New() *Renderer {
	return &Renderer{exprs: make(map[string]jp.Expr)}
}

// Render substitutes every placeholder in text with its bound value.
// Dotted references resolve nested maps and slices; unbound references
// become the empty string.
func (r *Renderer) Render(text string, vars map[string]any) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		ref := placeholderRe.FindStringSubmatch(match)[1]

		value, ok := r.lookup(ref, vars)
		if !ok {
			return ""
		}
		return stringify(value)
	})
}

// RenderPath applies the same substitution rules to a path string
func (r *Renderer) RenderPath(path string, vars map[string]any) string {
	return r.Render(path, vars)
}

// ExtractVariables returns the de-duplicated root identifiers
// referenced by text, in first-appearance order. Dotted references
// collapse to their root name.
func (r *Renderer) ExtractVariables(text string) []string {
	matches := placeholderRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var roots []string

	for _, m := range matches {
		root := m[1]
		if i := strings.IndexByte(root, '.'); i >= 0 {
			root = root[:i]
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}

	return roots
}

// ValidateVariables returns the referenced root identifiers that are
// absent from provided, enabling a strict mode that reports every
// missing name in one pass.
func (r *Renderer) ValidateVariables(text string, provided map[string]any) []string {
	var missing []string
	for _, root := range r.ExtractVariables(text) {
		if _, ok := provided[root]; !ok {
			missing = append(missing, root)
		}
	}
	return missing
}

// lookup resolves a placeholder reference against the bindings
func (r *Renderer) lookup(ref string, vars map[string]any) (any, bool) {
	if len(vars) == 0 {
		return nil, false
	}

	if !strings.Contains(ref, ".") {
		value, ok := vars[ref]
		return value, ok
	}

	results := r.expr(ref).Get(vars)
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

// expr returns the cached path expression for a dotted reference
func (r *Renderer) expr(ref string) jp.Expr {
	r.mu.RLock()
	x, ok := r.exprs[ref]
	r.mu.RUnlock()
	if ok {
		return x
	}

	segments := strings.Split(ref, ".")
	x = jp.C(segments[0])
	for _, seg := range segments[1:] {
		x = x.C(seg)
	}

	r.mu.Lock()
	r.exprs[ref] = x
	r.mu.Unlock()

	return x
}

// stringify converts a bound value to its textual substitution.
// Scalars render bare; arrays and objects render as compact JSON.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return oj.JSON(v)
	}
}
