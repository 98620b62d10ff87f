// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remotefile

import (
	"fmt"
	"os"
)

// executeBits are the owner, group, and other execute permissions.
const executeBits os.FileMode = 0o111

// applyPermissions sets or clears execute bits on path according to
// kind. It is a no-op on platforms without execute bits, and skips the
// chmod when the mode is already right.
func applyPermissions(path string, kind Kind) error {
	if !executableBitsSupported {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	current := info.Mode().Perm()

	var want os.FileMode
	switch kind {
	case KindExecutable:
		want = current | executeBits
	case KindData:
		want = current &^ executeBits
	default:
		return fmt.Errorf("unknown kind %s", kind)
	}
	if want == current {
		return nil
	}
	return os.Chmod(path, want)
}
