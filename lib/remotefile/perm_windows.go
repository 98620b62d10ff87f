// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package remotefile

// Executability on Windows comes from the file extension, not the mode.
const executableBitsSupported = false
