// internal/cli/backups_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), environment overrides
// PURPOSE: backups list, restore and cleanup end to end against backups
// taken by generate

package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stencil/pkg/backup"
)

func TestBackupsListCmd_Empty(t *testing.T) {
	setupWorkspace(t)

	output, err := runCLI(t, "backups", "list", "--format", "text")

	require.NoError(t, err)
	assert.Contains(t, output, "No backups found")
}

func TestBackupsRestoreCmd_OverwrittenFile(t *testing.T) {
	root := setupWorkspace(t)
	writeTemplate(t, root, "app", appManifest, appFiles())
	dest := filepath.Join(t.TempDir(), "out")

	_, err := runCLI(t, "generate", "app",
		"--dest", dest, "--var", "projectName=first", "--format", "text")
	require.NoError(t, err)

	// Hand-edit the generated file, then regenerate over it. The
	// overwrite must snapshot the edited content.
	readme := filepath.Join(dest, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("hand edited\n"), 0o644))

	_, err = runCLI(t, "generate", "app",
		"--dest", dest, "--var", "projectName=second", "--overwrite", "--format", "text")
	require.NoError(t, err)
	require.Equal(t, "# second\n\nListens on 8080.\n", readFile(t, readme))

	output, err := runCLI(t, "backups", "list", "--format", "json")
	require.NoError(t, err)

	var records []backup.Record
	require.NoError(t, json.Unmarshal([]byte(output), &records))

	var snapshot *backup.Record
	for i := range records {
		if records[i].Existed && records[i].Path == readme {
			snapshot = &records[i]
			break
		}
	}
	require.NotNil(t, snapshot, "expected a backup of the overwritten file, got:\n%s", output)
	assert.True(t, strings.HasPrefix(snapshot.Checksum, "sha256:"))

	output, err = runCLI(t, "backups", "restore", snapshot.ID, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, output, "Restored 1 backup(s).")
	assert.Equal(t, "hand edited\n", readFile(t, readme))
}

func TestBackupsRestoreCmd_RemovesCreatedFile(t *testing.T) {
	root := setupWorkspace(t)
	writeTemplate(t, root, "app", appManifest, appFiles())
	dest := filepath.Join(t.TempDir(), "out")

	_, err := runCLI(t, "generate", "app",
		"--dest", dest, "--var", "projectName=first", "--format", "text")
	require.NoError(t, err)

	output, err := runCLI(t, "backups", "list", "--format", "json")
	require.NoError(t, err)

	var records []backup.Record
	require.NoError(t, json.Unmarshal([]byte(output), &records))

	// The first generation backs up the prior absence of each file, so
	// restoring puts the absence back.
	readme := filepath.Join(dest, "README.md")
	var created *backup.Record
	for i := range records {
		if !records[i].Existed && records[i].Path == readme {
			created = &records[i]
			break
		}
	}
	require.NotNil(t, created, "expected an absence record for %s, got:\n%s", readme, output)

	_, err = runCLI(t, "backups", "restore", created.ID, "--format", "text")
	require.NoError(t, err)
	assert.NoFileExists(t, readme)
}

func TestBackupsRestoreCmd_UnknownID(t *testing.T) {
	setupWorkspace(t)

	_, err := runCLI(t, "backups", "restore", "bogus", "--format", "text")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBackupsCleanupCmd(t *testing.T) {
	root := setupWorkspace(t)
	writeTemplate(t, root, "app", appManifest, appFiles())

	_, err := runCLI(t, "generate", "app",
		"--dest", filepath.Join(t.TempDir(), "out"),
		"--var", "projectName=first", "--format", "text")
	require.NoError(t, err)

	// Nothing is older than an hour yet.
	output, err := runCLI(t, "backups", "cleanup", "--older-than", "1h", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, output, "Removed 0 backup(s)")

	time.Sleep(50 * time.Millisecond)

	output, err = runCLI(t, "backups", "cleanup", "--older-than", "10ms", "--format", "json")
	require.NoError(t, err)

	var payload struct {
		Removed int `json:"removed"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &payload))
	assert.Equal(t, 2, payload.Removed)

	output, err = runCLI(t, "backups", "list", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, output, "No backups found")
}
