// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteFileAndRequireContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "file")
	WriteFile(t, path, []byte("cake"), 0o644)
	RequireContent(t, path, []byte("cake"))
	RequireNotExecutable(t, path)
}

func TestRequireNotExist(t *testing.T) {
	RequireNotExist(t, filepath.Join(t.TempDir(), "absent"))
}

func TestRequireExecutable(t *testing.T) {
	if !SupportsExecuteBits() {
		t.Skip("no execute bits on this platform")
	}
	path := filepath.Join(t.TempDir(), "tool")
	WriteFile(t, path, []byte("#!/bin/sh\n"), 0o755)
	RequireExecutable(t, path)
}

func TestUniqueID(t *testing.T) {
	first := UniqueID("rule")
	second := UniqueID("rule")
	if first == second {
		t.Errorf("UniqueID returned %q twice", first)
	}
	if !strings.HasPrefix(first, "rule-") {
		t.Errorf("UniqueID = %q, want rule- prefix", first)
	}
}

func TestRequireReceive(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second, "value"); got != 7 {
		t.Errorf("RequireReceive = %d, want 7", got)
	}
}
