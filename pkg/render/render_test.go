// pkg/render/render_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Placeholder substitution, extraction, and validation

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderer_Render(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		text string
		vars map[string]any
		want string
	}{
		{
			name: "no placeholders is identity",
			text: "plain text, nothing to do",
			vars: map[string]any{"name": "x"},
			want: "plain text, nothing to do",
		},
		{
			name: "simple substitution",
			text: "hello {{name}}!",
			vars: map[string]any{"name": "world"},
			want: "hello world!",
		},
		{
			name: "interior whitespace",
			text: "hello {{ name }}!",
			vars: map[string]any{"name": "world"},
			want: "hello world!",
		},
		{
			name: "unbound renders empty",
			text: "hello {{missing}}!",
			vars: map[string]any{"name": "world"},
			want: "hello !",
		},
		{
			name: "nil bindings",
			text: "hello {{name}}!",
			vars: nil,
			want: "hello !",
		},
		{
			name: "dotted path",
			text: "by {{author.name}} <{{author.email}}>",
			vars: map[string]any{
				"author": map[string]any{"name": "Ada", "email": "ada@example.com"},
			},
			want: "by Ada <ada@example.com>",
		},
		{
			name: "deep dotted path",
			text: "{{a.b.c}}",
			vars: map[string]any{
				"a": map[string]any{"b": map[string]any{"c": "deep"}},
			},
			want: "deep",
		},
		{
			name: "dotted path into missing branch",
			text: "[{{author.phone}}]",
			vars: map[string]any{"author": map[string]any{"name": "Ada"}},
			want: "[]",
		},
		{
			name: "number value",
			text: "port={{port}}",
			vars: map[string]any{"port": float64(8080)},
			want: "port=8080",
		},
		{
			name: "float value",
			text: "ratio={{ratio}}",
			vars: map[string]any{"ratio": 0.5},
			want: "ratio=0.5",
		},
		{
			name: "bool value",
			text: "debug={{debug}}",
			vars: map[string]any{"debug": true},
			want: "debug=true",
		},
		{
			name: "array renders as compact JSON",
			text: "tags={{tags}}",
			vars: map[string]any{"tags": []any{"go", "cli"}},
			want: `tags=["go","cli"]`,
		},
		{
			name: "object renders as compact JSON",
			text: "cfg={{cfg}}",
			vars: map[string]any{"cfg": map[string]any{"a": 1}},
			want: `cfg={"a":1}`,
		},
		{
			name: "no escaping of special characters",
			text: "{{snippet}}",
			vars: map[string]any{"snippet": `<b>&"a"'</b>`},
			want: `<b>&"a"'</b>`,
		},
		{
			name: "block markers pass through verbatim",
			text: "{{#items}}{{name}}{{/items}} and {{^empty}}x{{/empty}}",
			vars: map[string]any{"name": "n"},
			want: "{{#items}}n{{/items}} and {{^empty}}x{{/empty}}",
		},
		{
			name: "repeated placeholder",
			text: "{{x}}{{x}}{{x}}",
			vars: map[string]any{"x": "a"},
			want: "aaa",
		},
		{
			name: "malformed placeholder left alone",
			text: "{{not closed and {{0bad}}",
			vars: map[string]any{"not": "x"},
			want: "{{not closed and {{0bad}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(tt.text, tt.vars))
		})
	}
}

func TestRenderer_RenderDeterministic(t *testing.T) {
	r := New()
	vars := map[string]any{"a": "1", "b": map[string]any{"c": "2"}}
	text := "{{a}}-{{b.c}}-{{a}}"

	first := r.Render(text, vars)
	second := r.Render(text, vars)
	assert.Equal(t, first, second)
	assert.Equal(t, "1-2-1", first)
}

func TestRenderer_RenderPath(t *testing.T) {
	r := New()

	got := r.RenderPath("src/{{contractName}}.sol", map[string]any{"contractName": "Token"})
	assert.Equal(t, "src/Token.sol", got)
}

func TestRenderer_ExtractVariables(t *testing.T) {
	r := New()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "none",
			text: "plain",
			want: nil,
		},
		{
			name: "simple and dotted collapse to roots",
			text: "{{name}} {{author.email}} {{name}}",
			want: []string{"name", "author"},
		},
		{
			name: "first appearance order",
			text: "{{b}} {{a}} {{b}} {{c}}",
			want: []string{"b", "a", "c"},
		},
		{
			name: "block markers excluded",
			text: "{{#list}}{{item}}{{/list}}{{^flag}}off{{/flag}}",
			want: []string{"item"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ExtractVariables(tt.text))
		})
	}
}

func TestRenderer_ValidateVariables(t *testing.T) {
	r := New()

	missing := r.ValidateVariables(
		"{{name}} {{author.email}} {{license}}",
		map[string]any{"author": map[string]any{}},
	)
	assert.Equal(t, []string{"name", "license"}, missing)

	assert.Empty(t, r.ValidateVariables("{{name}}", map[string]any{"name": "x"}))
}
