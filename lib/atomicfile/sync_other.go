// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package atomicfile

import "os"

// syncDirectory is a no-op where directories cannot be opened for
// syncing.
func syncDirectory(string) error { return nil }

// syncFile flushes a regular file. Flushing needs a writable handle
// here.
func syncFile(path string) error {
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
