// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atomicfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCommitReplacesDestination(t *testing.T) {
	directory := t.TempDir()
	source := filepath.Join(directory, "staged")
	destination := filepath.Join(directory, "final")

	if err := os.WriteFile(destination, []byte("old"), 0o644); err != nil {
		t.Fatalf("WriteFile destination: %v", err)
	}
	if err := os.WriteFile(source, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFile source: %v", err)
	}

	if err := Commit(source, destination); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := os.ReadFile(destination)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("destination = %q, want %q", got, "new")
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Errorf("source should be consumed by Commit, stat err = %v", err)
	}
}

func TestCommitMissingSource(t *testing.T) {
	directory := t.TempDir()
	destination := filepath.Join(directory, "final")
	if err := os.WriteFile(destination, []byte("keep"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := Commit(filepath.Join(directory, "missing"), destination); err == nil {
		t.Fatal("Commit should fail when the source does not exist")
	}

	got, err := os.ReadFile(destination)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "keep" {
		t.Errorf("failed Commit changed destination to %q", got)
	}
}

func TestCommitErrorNamesPathsOnce(t *testing.T) {
	directory := t.TempDir()
	source := filepath.Join(directory, "missing")
	destination := filepath.Join(directory, "final")

	err := Commit(source, destination)
	if err == nil {
		t.Fatal("Commit should fail when the source does not exist")
	}
	var linkError *os.LinkError
	if !errors.As(err, &linkError) {
		t.Fatalf("error %T is not an *os.LinkError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v does not wrap os.ErrNotExist", err)
	}
	if count := strings.Count(err.Error(), destination); count != 1 {
		t.Errorf("error %q names the destination %d times, want 1", err, count)
	}
}

func TestSyncFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staged")
	if err := os.WriteFile(path, []byte("staged"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := SyncFile(path); err != nil {
		t.Fatalf("SyncFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "staged" {
		t.Errorf("SyncFile changed content to %q", got)
	}

	if err := SyncFile(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("SyncFile(missing) = %v, want os.ErrNotExist", err)
	}
}

func TestWriteFile(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "ledger")

	if err := WriteFile(path, []byte("first"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("second WriteFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the committed file", len(entries))
	}
}
