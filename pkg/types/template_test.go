package types_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stencil/pkg/types"
)

func boolPtr(b bool) *bool { return &b }

func TestFileMappingShouldTransform(t *testing.T) {
	tests := []struct {
		name    string
		mapping types.FileMapping
		want    bool
	}{
		{"unset defaults to transform", types.FileMapping{}, true},
		{"explicit true", types.FileMapping{Transform: boolPtr(true)}, true},
		{"explicit false", types.FileMapping{Transform: boolPtr(false)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mapping.ShouldTransform())
		})
	}
}

func TestFileMappingMode(t *testing.T) {
	tests := []struct {
		name     string
		perms    string
		wantMode fs.FileMode
		wantOK   bool
	}{
		{"empty means unset", "", 0, false},
		{"classic octal", "0755", 0o755, true},
		{"go style octal", "0o644", 0o644, true},
		{"garbage means unset", "rwxr", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := types.FileMapping{Permissions: tt.perms}
			mode, ok := m.Mode()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantMode, mode)
			}
		})
	}
}

func TestHooksForPhase(t *testing.T) {
	def := &types.TemplateDefinition{
		Hooks: []types.HookSpec{
			{Phase: types.PhasePreGenerate, Command: "echo one"},
			{Phase: types.PhasePostGenerate, Command: "echo two"},
			{Phase: types.PhasePreGenerate, Command: "echo three"},
		},
	}

	pre := def.HooksForPhase(types.PhasePreGenerate)
	require.Len(t, pre, 2)
	// Declaration order must be preserved.
	assert.Equal(t, "echo one", pre[0].Command)
	assert.Equal(t, "echo three", pre[1].Command)

	assert.Empty(t, def.HooksForPhase(types.PhasePreFile))
}

func TestValidHookPhase(t *testing.T) {
	for _, p := range []types.HookPhase{
		types.PhasePreGenerate, types.PhasePostGenerate,
		types.PhasePreFile, types.PhasePostFile,
	} {
		assert.True(t, types.ValidHookPhase(p))
	}
	assert.False(t, types.ValidHookPhase("mid-generate"))
}

func TestTemplateDefinitionVariable(t *testing.T) {
	def := &types.TemplateDefinition{
		Variables: []types.VariableSpec{
			{Name: "projectName", Type: types.VarString},
			{Name: "port", Type: types.VarNumber},
		},
	}

	require.NotNil(t, def.Variable("port"))
	assert.Equal(t, types.VarNumber, def.Variable("port").Type)
	assert.Nil(t, def.Variable("missing"))
}

func TestTemplateDefinitionSummary(t *testing.T) {
	def := &types.TemplateDefinition{
		Name:         "web-api",
		Version:      "1.2.0",
		Description:  "REST service scaffold",
		Tags:         []string{"go", "api"},
		Dependencies: []string{"base"},
		Path:         "/templates/web-api",
		Validation:   &types.TemplateValidation{},
	}

	s := def.Summary()
	assert.Equal(t, "web-api", s.Name)
	assert.Equal(t, "1.2.0", s.Version)
	assert.True(t, s.Valid)

	def.Validation.AddError("missing version")
	assert.False(t, def.Summary().Valid)
}
