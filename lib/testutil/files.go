// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// TB is the subset of testing.TB the helpers need. rapid.T satisfies
// it too, so helpers work inside property checks.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t TB, path string, content []byte, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, perm); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// RequireContent fails unless path exists with exactly want.
func RequireContent(t TB, path string, want []byte) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(got) != string(want) {
		t.Fatalf("%s contains %q, want %q", path, got, want)
	}
}

// RequireNotExist fails unless path does not exist.
func RequireNotExist(t TB, path string) {
	t.Helper()
	_, err := os.Lstat(path)
	if err == nil {
		t.Fatalf("%s exists, want it absent", path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stat %s: %v", path, err)
	}
}

// SupportsExecuteBits reports whether the test platform has POSIX
// execute bits. Tests of permission policy skip when it is false.
func SupportsExecuteBits() bool {
	return runtime.GOOS != "windows"
}

// RequireExecutable fails unless owner, group, and other execute bits
// are all set on path.
func RequireExecutable(t TB, path string) {
	t.Helper()
	mode := fileMode(t, path)
	if mode&0o111 != 0o111 {
		t.Fatalf("%s has mode %v, want owner/group/other execute bits", path, mode)
	}
}

// RequireNotExecutable fails if any execute bit is set on path.
func RequireNotExecutable(t TB, path string) {
	t.Helper()
	mode := fileMode(t, path)
	if mode&0o111 != 0 {
		t.Fatalf("%s has mode %v, want no execute bits", path, mode)
	}
}

func fileMode(t TB, path string) os.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.Mode().Perm()
}
