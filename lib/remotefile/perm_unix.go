// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package remotefile

// executableBitsSupported reports whether the platform has POSIX
// execute permission bits.
const executableBitsSupported = true
