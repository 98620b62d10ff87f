// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifactcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bureau-foundation/remotefile/lib/atomicfile"
	"github.com/bureau-foundation/remotefile/lib/codec"
)

// Recorder registers a path as a produced, cacheable build output.
type Recorder interface {
	RecordArtifact(path string)
}

// ledgerVersion is bumped when the on-disk record changes shape.
const ledgerVersion = 1

// Ledger records artifact paths in first-recorded order. Recording a
// path twice keeps the first position. Safe for concurrent use, so
// one Ledger can be shared by rules running in parallel.
type Ledger struct {
	mu    sync.Mutex
	paths []string
	seen  map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// RecordArtifact implements Recorder.
func (l *Ledger) RecordArtifact(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	if _, exists := l.seen[path]; exists {
		return
	}
	l.seen[path] = struct{}{}
	l.paths = append(l.paths, path)
}

// Paths returns a copy of the recorded paths.
func (l *Ledger) Paths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.paths...)
}

// Contains reports whether path has been recorded.
func (l *Ledger) Contains(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, exists := l.seen[path]
	return exists
}

type ledgerRecord struct {
	Version   int      `cbor:"version"`
	Artifacts []string `cbor:"artifacts"`
}

// Save writes the ledger to path atomically, creating the parent
// directory if needed.
func (l *Ledger) Save(path string) error {
	data, err := codec.Marshal(ledgerRecord{Version: ledgerVersion, Artifacts: l.Paths()})
	if err != nil {
		return fmt.Errorf("encoding artifact ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact ledger: %w", err)
	}
	return nil
}

// LoadLedger reads a ledger written by Save.
func LoadLedger(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact ledger: %w", err)
	}
	var record ledgerRecord
	if err := codec.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding artifact ledger %s: %w", path, err)
	}
	if record.Version != ledgerVersion {
		return nil, fmt.Errorf("artifact ledger %s has version %d, want %d", path, record.Version, ledgerVersion)
	}
	ledger := NewLedger()
	for _, artifact := range record.Artifacts {
		ledger.RecordArtifact(artifact)
	}
	return ledger, nil
}
