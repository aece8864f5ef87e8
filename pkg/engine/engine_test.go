// pkg/engine/engine_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testutil.MemoryFS, fake hook runner
// PURPOSE: Engine wiring: hook phases around generation, env injection, cache surface

package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stencilerrors "github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/testutil"
	"github.com/arthur-debert/stencil/pkg/types"
)

const (
	templatesRoot = "/templates"
	destination   = "/dest"
)

type fakeCall struct {
	command string
	dir     string
	env     []string
}

type fakeRunner struct {
	calls    []fakeCall
	failures map[string]int
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{failures: map[string]int{}}
}

func (f *fakeRunner) run(_ context.Context, command, dir string, env []string) (string, string, int, error) {
	f.calls = append(f.calls, fakeCall{command: command, dir: dir, env: env})
	if code, ok := f.failures[command]; ok {
		return "", "boom", code, errors.New("exit status 1")
	}
	return "", "", 0, nil
}

func (f *fakeRunner) commands() []string {
	var out []string
	for _, c := range f.calls {
		out = append(out, c.command)
	}
	return out
}

func lastEnv(env []string, key string) (string, bool) {
	prefix := key + "="
	for i := len(env) - 1; i >= 0; i-- {
		if strings.HasPrefix(env[i], prefix) {
			return strings.TrimPrefix(env[i], prefix), true
		}
	}
	return "", false
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *testutil.MemoryFS, *fakeRunner) {
	t.Helper()

	fsys := testutil.NewMemoryFS()
	require.NoError(t, fsys.MkdirAll(templatesRoot, 0755))

	cfg.TemplatesRoot = templatesRoot
	cfg.BackupsDir = "/backups"
	cfg.FS = fsys
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}

	e, err := New(cfg)
	require.NoError(t, err)

	fake := newFakeRunner()
	e.executor.SetRunner(fake.run)
	return e, fsys, fake
}

func addServiceTemplate(t *testing.T, fsys *testutil.MemoryFS) {
	t.Helper()

	tt := testutil.SetupTestTemplateIn(t, fsys, templatesRoot, "svc")
	tt.AddManifest(t, `{
  "name": "svc",
  "version": "1.2.0",
  "variables": [{"name": "projectName", "type": "string", "required": true}],
  "files": [{"source": "app.conf", "target": "{{projectName}}.conf"}],
  "hooks": [
    {"phase": "pre-generate", "command": "echo pre"},
    {"phase": "post-generate", "command": "make setup"}
  ]
}`)
	tt.AddFile(t, "app.conf", "project={{projectName}}\n")
}

func svcRequest() Request {
	return Request{
		Template:    "svc",
		Destination: destination,
		Variables:   map[string]interface{}{"projectName": "shop"},
		UseCache:    true,
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{BackupsDir: "/b"})
	require.Error(t, err)
	assert.Equal(t, stencilerrors.ErrInvalidInput, stencilerrors.GetErrorCode(err))

	_, err = New(Config{TemplatesRoot: "/t"})
	require.Error(t, err)
	assert.Equal(t, stencilerrors.ErrInvalidInput, stencilerrors.GetErrorCode(err))
}

func TestGenerate_HooksAroundGeneration(t *testing.T) {
	e, fsys, fake := newTestEngine(t, Config{})
	addServiceTemplate(t, fsys)

	res, err := e.Generate(context.Background(), svcRequest())
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Equal(t, []string{"echo pre", "make setup"}, fake.commands())

	require.Len(t, res.HookResults, 2)
	assert.Equal(t, types.PhasePreGenerate, res.HookResults[0].Phase)
	assert.Equal(t, types.PhasePostGenerate, res.HookResults[1].Phase)

	assert.Equal(t, []string{"shop.conf"}, res.Generated)
	assert.True(t, fsys.Exists("/dest/shop.conf"))

	// pre-generate runs before the destination exists, post-generate
	// inside it; both get the canonical env
	assert.Equal(t, "", fake.calls[0].dir)
	assert.Equal(t, destination, fake.calls[1].dir)

	call := fake.calls[0]
	for key, want := range map[string]string{
		"STENCIL_TEMPLATE":         "svc",
		"STENCIL_TEMPLATE_VERSION": "1.2.0",
		"STENCIL_DESTINATION":      destination,
		"STENCIL_DRY_RUN":          "false",
	} {
		got, ok := lastEnv(call.env, key)
		require.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
}

func TestGenerate_FatalPreGenerateHookStops(t *testing.T) {
	e, fsys, fake := newTestEngine(t, Config{})
	addServiceTemplate(t, fsys)
	fake.failures["echo pre"] = 1

	res, err := e.Generate(context.Background(), svcRequest())
	require.Error(t, err)
	assert.Equal(t, stencilerrors.ErrExecutionFailure, stencilerrors.GetErrorCode(err))

	// the partial result carries the failed hook
	require.NotNil(t, res)
	require.Len(t, res.HookResults, 1)
	assert.False(t, res.HookResults[0].Success)
	assert.Empty(t, res.Generated)

	assert.Equal(t, []string{"echo pre"}, fake.commands(), "generation and post hooks never ran")
	assert.False(t, fsys.Exists(destination))
}

func TestGenerate_PostGenerateFailureKeepsFiles(t *testing.T) {
	e, fsys, fake := newTestEngine(t, Config{})
	addServiceTemplate(t, fsys)
	fake.failures["make setup"] = 1

	res, err := e.Generate(context.Background(), svcRequest())
	require.Error(t, err)

	require.NotNil(t, res)
	assert.Equal(t, []string{"shop.conf"}, res.Generated, "generated files survive a post hook failure")
	assert.True(t, fsys.Exists("/dest/shop.conf"))

	require.Len(t, res.HookResults, 2)
	assert.True(t, res.HookResults[0].Success)
	assert.False(t, res.HookResults[1].Success)
}

func TestGenerate_FileHooks(t *testing.T) {
	e, fsys, fake := newTestEngine(t, Config{})

	tt := testutil.SetupTestTemplateIn(t, fsys, templatesRoot, "files-tpl")
	tt.AddManifest(t, `{
  "name": "files-tpl",
  "version": "1.0.0",
  "files": [
    {"source": "a.txt", "target": "a.txt"},
    {"source": "b.txt", "target": "b.txt"}
  ],
  "hooks": [
    {"phase": "pre-file", "command": "lint"},
    {"phase": "post-file", "command": "fmt"}
  ]
}`)
	tt.AddFile(t, "a.txt", "a")
	tt.AddFile(t, "b.txt", "b")

	res, err := e.Generate(context.Background(), Request{
		Template:    "files-tpl",
		Destination: destination,
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Equal(t, []string{"lint", "fmt", "lint", "fmt"}, fake.commands())
	require.Len(t, res.HookResults, 4)

	got, ok := lastEnv(fake.calls[0].env, "STENCIL_FILE")
	require.True(t, ok)
	assert.Equal(t, "a.txt", got)

	got, ok = lastEnv(fake.calls[2].env, "STENCIL_FILE")
	require.True(t, ok)
	assert.Equal(t, "b.txt", got)
}

func TestGenerate_DisableHooks(t *testing.T) {
	e, fsys, fake := newTestEngine(t, Config{DisableHooks: true})
	addServiceTemplate(t, fsys)

	res, err := e.Generate(context.Background(), svcRequest())
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Empty(t, fake.calls)
	assert.Empty(t, res.HookResults)
	assert.True(t, fsys.Exists("/dest/shop.conf"))
}

func TestGenerate_ExtraEnvWins(t *testing.T) {
	e, fsys, fake := newTestEngine(t, Config{})
	addServiceTemplate(t, fsys)

	req := svcRequest()
	req.ExtraEnv = map[string]string{
		"DEPLOY_ENV":       "staging",
		"STENCIL_TEMPLATE": "spoof",
	}

	_, err := e.Generate(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, fake.calls)

	got, ok := lastEnv(fake.calls[0].env, "DEPLOY_ENV")
	require.True(t, ok)
	assert.Equal(t, "staging", got)

	got, ok = lastEnv(fake.calls[0].env, "STENCIL_TEMPLATE")
	require.True(t, ok)
	assert.Equal(t, "spoof", got, "caller env overrides the canonical value")
}

func TestPreview(t *testing.T) {
	e, fsys, fake := newTestEngine(t, Config{})
	addServiceTemplate(t, fsys)

	_, writesBefore := fsys.Stats()
	res, err := e.Preview(context.Background(), svcRequest())
	_, writesAfter := fsys.Stats()
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, []string{"shop.conf"}, res.Generated)
	assert.Equal(t, writesBefore, writesAfter, "preview must not write")
	assert.False(t, fsys.Exists(destination))

	// generation hooks still run, flagged as a dry run
	require.NotEmpty(t, fake.calls)
	got, ok := lastEnv(fake.calls[0].env, "STENCIL_DRY_RUN")
	require.True(t, ok)
	assert.Equal(t, "true", got)
}

func TestGetTemplate_Caches(t *testing.T) {
	e, fsys, _ := newTestEngine(t, Config{})
	addServiceTemplate(t, fsys)

	first, err := e.GetTemplate("svc")
	require.NoError(t, err)
	second, err := e.GetTemplate("svc")
	require.NoError(t, err)
	assert.Same(t, first, second)

	e.ClearCache("svc")
	third, err := e.GetTemplate("svc")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestValidateTemplate_BypassesCache(t *testing.T) {
	e, fsys, _ := newTestEngine(t, Config{})
	addServiceTemplate(t, fsys)

	// warm the cache with the valid definition
	_, err := e.GetTemplate("svc")
	require.NoError(t, err)

	v, err := e.ValidateTemplate("svc")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.True(t, v.Valid())

	// break the manifest on disk; validation must see it
	require.NoError(t, fsys.WriteFile("/templates/svc/stencil.json",
		[]byte(`{"name": "svc", "version": "1.2.0", "variables": [{"name": "x"}]}`), 0644))

	v, err = e.ValidateTemplate("svc")
	require.NoError(t, err)
	assert.False(t, v.Valid())
	assert.NotEmpty(t, v.Errors)
}

func TestListTemplates(t *testing.T) {
	e, fsys, _ := newTestEngine(t, Config{})
	addServiceTemplate(t, fsys)

	summaries, err := e.ListTemplates()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "svc", summaries[0].Name)
	assert.Equal(t, "1.2.0", summaries[0].Version)
}

func TestBackupsAccessor(t *testing.T) {
	e, _, _ := newTestEngine(t, Config{})
	require.NotNil(t, e.Backups())
	assert.Equal(t, "/backups", e.Backups().Dir())
}
