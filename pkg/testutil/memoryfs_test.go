// pkg/testutil/memoryfs_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test MemoryFS implementation

package testutil

import (
	"errors"
	"io/fs"
	"os"
	"testing"
)

func TestMemoryFS_BasicOperations(t *testing.T) {
	mfs := NewMemoryFS()

	t.Run("WriteAndRead", func(t *testing.T) {
		content := []byte("test content")
		err := mfs.WriteFile("/test.txt", content, 0644)
		if err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		read, err := mfs.ReadFile("/test.txt")
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}

		if string(read) != string(content) {
			t.Errorf("content mismatch: got %q, want %q", read, content)
		}
	})

	t.Run("WriteCreatesParents", func(t *testing.T) {
		err := mfs.WriteFile("/deep/nested/file.txt", []byte("x"), 0644)
		if err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		info, err := mfs.Stat("/deep/nested")
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if !info.IsDir() {
			t.Error("parent was not created as a directory")
		}
	})

	t.Run("MkdirAll", func(t *testing.T) {
		err := mfs.MkdirAll("/path/to/dir", 0755)
		if err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}

		info, err := mfs.Stat("/path/to/dir")
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}

		if !info.IsDir() {
			t.Error("created path is not a directory")
		}
	})

	t.Run("Chmod", func(t *testing.T) {
		if err := mfs.WriteFile("/script.sh", []byte("#!/bin/sh"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if err := mfs.Chmod("/script.sh", 0755); err != nil {
			t.Fatalf("Chmod failed: %v", err)
		}

		info, err := mfs.Stat("/script.sh")
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.Mode().Perm() != 0755 {
			t.Errorf("wrong mode: got %v, want 0755", info.Mode().Perm())
		}
	})

	t.Run("ReadDirSorted", func(t *testing.T) {
		if err := mfs.MkdirAll("/sorted", 0755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		for _, name := range []string{"zeta.txt", "alpha.txt", "mid.txt"} {
			if err := mfs.WriteFile("/sorted/"+name, []byte("x"), 0644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
		}

		entries, err := mfs.ReadDir("/sorted")
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}

		want := []string{"alpha.txt", "mid.txt", "zeta.txt"}
		if len(entries) != len(want) {
			t.Fatalf("wrong entry count: got %d, want %d", len(entries), len(want))
		}
		for i, e := range entries {
			if e.Name() != want[i] {
				t.Errorf("entry %d: got %q, want %q", i, e.Name(), want[i])
			}
		}
	})

	t.Run("Remove", func(t *testing.T) {
		if err := mfs.WriteFile("/gone.txt", []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if err := mfs.Remove("/gone.txt"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if _, err := mfs.Stat("/gone.txt"); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected not-exist after Remove, got: %v", err)
		}
	})

	t.Run("RemoveAll", func(t *testing.T) {
		if err := mfs.WriteFile("/tree/a/b.txt", []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if err := mfs.RemoveAll("/tree"); err != nil {
			t.Fatalf("RemoveAll failed: %v", err)
		}
		if mfs.Exists("/tree/a/b.txt") || mfs.Exists("/tree") {
			t.Error("RemoveAll left entries behind")
		}
	})
}

func TestMemoryFS_ErrorInjection(t *testing.T) {
	mfs := NewMemoryFS()

	// All-operation injection
	mfs.WithError("/error.txt", os.ErrPermission)

	_, err := mfs.ReadFile("/error.txt")
	if err != os.ErrPermission {
		t.Errorf("expected permission error on read, got: %v", err)
	}

	err = mfs.WriteFile("/error.txt", []byte("data"), 0644)
	if err != os.ErrPermission {
		t.Errorf("expected permission error on write, got: %v", err)
	}

	// Operation-scoped injection: write fails, read still works
	mfs2 := NewMemoryFS()
	if err := mfs2.WriteFile("/half.txt", []byte("original"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	mfs2.WithOpError(OpWrite, "/half.txt", os.ErrPermission)

	data, err := mfs2.ReadFile("/half.txt")
	if err != nil {
		t.Fatalf("read should still succeed: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("wrong content: got %q", data)
	}

	if err := mfs2.WriteFile("/half.txt", []byte("new"), 0644); err != os.ErrPermission {
		t.Errorf("expected permission error on write, got: %v", err)
	}

	mfs2.ClearErrors()
	if err := mfs2.WriteFile("/half.txt", []byte("new"), 0644); err != nil {
		t.Errorf("write should succeed after ClearErrors: %v", err)
	}
}

func TestMemoryFS_Stats(t *testing.T) {
	mfs := NewMemoryFS()

	reads, writes := mfs.Stats()
	if reads != 0 || writes != 0 {
		t.Errorf("initial stats wrong: reads=%d, writes=%d", reads, writes)
	}

	_ = mfs.WriteFile("/file1.txt", []byte("data"), 0644)
	_, _ = mfs.ReadFile("/file1.txt")
	_, _ = mfs.ReadFile("/file1.txt")

	reads, writes = mfs.Stats()
	if reads != 2 || writes != 1 {
		t.Errorf("stats after operations wrong: reads=%d, writes=%d", reads, writes)
	}
}

func TestSetupTestTemplate(t *testing.T) {
	tt := SetupTestTemplate(t, "web-app")
	tt.AddMinimalTemplate(t)

	data, err := tt.FS.ReadFile("/templates/web-app/stencil.json")
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("manifest is empty")
	}

	if !tt.FS.Exists("/templates/web-app/main.txt") {
		t.Error("source file not written")
	}
}
