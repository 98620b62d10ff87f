// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// ErrCrossDevice is returned by Commit when the source and destination
// live on different filesystems. A copy would not be atomic, so Commit
// refuses instead of falling back.
var ErrCrossDevice = errors.New("source and destination are on different filesystems")

// Commit renames source onto destination, replacing any existing file
// in one operation, then syncs the destination directory so the
// rename survives a crash. The source is left in place on failure;
// removing it is the caller's decision. A failed rename is returned as
// the *os.LinkError, which already names both paths.
func Commit(source, destination string) error {
	if err := os.Rename(source, destination); err != nil {
		var linkError *os.LinkError
		if errors.As(err, &linkError) && errors.Is(linkError.Err, syscall.EXDEV) {
			return &os.LinkError{Op: linkError.Op, Old: linkError.Old, New: linkError.New, Err: ErrCrossDevice}
		}
		return err
	}
	if err := syncDirectory(filepath.Dir(destination)); err != nil {
		return fmt.Errorf("syncing directory of %s: %w", destination, err)
	}
	return nil
}

// SyncFile flushes the content of the file at path to stable storage.
// Callers that commit a file written by someone else sync it first, so
// the rename never makes a partially persisted file durable.
func SyncFile(path string) error {
	if err := syncFile(path); err != nil {
		return &os.PathError{Op: "sync", Path: path, Err: err}
	}
	return nil
}

// WriteFile writes data to a temporary file next to path and commits
// it over path. The file mode is perm.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	temporaryPath := file.Name()

	// Write, chmod, sync, close, in that order. Any failure removes
	// the temporary file and reports the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary file for %s: %w", path, err)
	}
	if err := file.Chmod(perm); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("setting mode on temporary file for %s: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary file for %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary file for %s: %w", path, err)
	}

	if err := Commit(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return err
	}
	return nil
}
