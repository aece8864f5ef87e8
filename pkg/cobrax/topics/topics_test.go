// pkg/cobrax/topics/topics_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Topic scanning over an fs.FS, name resolution including
// flag-style lookups, and cobra help-command integration

package topics

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicsFS() fstest.MapFS {
	return fstest.MapFS{
		"docs/topics/templates.md":     {Data: []byte("# Templates\n\nTemplate directory layout")},
		"docs/topics/hooks.md":         {Data: []byte("# Hooks\n\nLifecycle commands")},
		"docs/topics/dry-run.txt":      {Data: []byte("Information about dry-run mode")},
		"docs/topics/option-format.md": {Data: []byte("# --format\n\nOutput formats")},
		"docs/topics/notes.json":       {Data: []byte(`{"ignored": true}`)},
	}
}

func TestScanTopics(t *testing.T) {
	tm := New(topicsFS(), "docs/topics")
	require.NoError(t, tm.scanTopics())

	tests := []struct {
		name   string
		exists bool
	}{
		{"templates", true},
		{"hooks", true},
		{"dry-run", true},
		{"option-format", true},
		{"notes", false}, // .json not in default extensions
		{"missing", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic, exists := tm.GetTopic(tt.name)
			assert.Equal(t, tt.exists, exists)
			if exists {
				assert.Equal(t, tt.name, topic.Name)
				assert.NotEmpty(t, topic.Content)
			}
		})
	}
}

func TestScanTopics_MissingDir(t *testing.T) {
	tm := New(fstest.MapFS{}, "docs/topics")
	require.NoError(t, tm.scanTopics())
	assert.Empty(t, tm.ListTopics())
}

func TestGetTopic_FlagStyle(t *testing.T) {
	tm := New(topicsFS(), "docs/topics")
	require.NoError(t, tm.scanTopics())

	topic, exists := tm.GetTopic("--format")
	require.True(t, exists)
	assert.Equal(t, "option-format", topic.Name)

	topic, exists = tm.GetTopic("--dry-run")
	require.True(t, exists)
	assert.Equal(t, "dry-run", topic.Name)
}

func TestCustomExtensions(t *testing.T) {
	tm := NewWithOptions(topicsFS(), "docs/topics", Options{Extensions: []string{".json"}})
	require.NoError(t, tm.scanTopics())

	_, exists := tm.GetTopic("notes")
	assert.True(t, exists)
	_, exists = tm.GetTopic("templates")
	assert.False(t, exists)
}

func TestRenderTopicIndex(t *testing.T) {
	tm := New(topicsFS(), "docs/topics")
	require.NoError(t, tm.scanTopics())

	out := tm.renderTopicIndex("stencil")
	assert.Contains(t, out, "General topics:")
	assert.Contains(t, out, "templates")
	assert.Contains(t, out, "Option topics:")
	assert.Contains(t, out, "--format")
	assert.Contains(t, out, "stencil help <topic>")
}

func TestInitialize_ReplacesHelpCommand(t *testing.T) {
	root := &cobra.Command{Use: "stencil"}
	root.AddCommand(&cobra.Command{Use: "list", Run: func(*cobra.Command, []string) {}})

	require.NoError(t, Initialize(root, topicsFS(), "docs/topics"))

	var helpCmd *cobra.Command
	for _, c := range root.Commands() {
		if c.Name() == "help" {
			helpCmd = c
		}
	}
	require.NotNil(t, helpCmd)

	completions, directive := helpCmd.ValidArgsFunction(root, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.Contains(t, completions, "topics")
	assert.Contains(t, completions, "list")
	assert.Contains(t, completions, "templates")
}

func TestInitialize_UnknownTopicFallsBack(t *testing.T) {
	root := &cobra.Command{Use: "stencil"}
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)

	require.NoError(t, Initialize(root, topicsFS(), "docs/topics"))

	// An unknown name goes through the original cobra help path.
	root.SetArgs([]string{"help", "no-such-thing"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Usage:")
}

func TestPlainRenderer(t *testing.T) {
	assert.Equal(t, "raw", Plain.Render("raw", ".md"))
}

func TestMarkdownRenderer_NonMarkdownPassthrough(t *testing.T) {
	r := NewMarkdownRenderer()
	assert.Equal(t, "plain text", r.Render("plain text", ".txt"))
}
