// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile publishes files by rename so readers never
// observe a partially written path.
//
// [Commit] moves an already-written file into place and syncs the
// parent directory. [WriteFile] is the write-to-temporary, sync,
// rename sequence for callers that hold the content in memory.
package atomicfile
