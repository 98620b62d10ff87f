// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// File helpers ([WriteFile], [RequireContent], [RequireNotExist],
// [RequireExecutable], [RequireNotExecutable]) assert on the state of
// published build outputs. [RequireReceive] encapsulates the timeout
// safety valve for tests that wait on goroutines. [UniqueID] generates
// monotonically increasing identifiers for test disambiguation.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no internal dependencies.
package testutil
