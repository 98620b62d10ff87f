// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildstep

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Step is one unit of work within a rule.
type Step interface {
	// Name is a short label for logs, e.g. "mkdir" or "remote_file".
	Name() string

	// Execute performs the step. A nil error means success.
	Execute(ctx context.Context) error
}

// Func adapts a function to the Step interface.
type Func struct {
	Label string
	Run   func(ctx context.Context) error
}

// Name returns the label.
func (f Func) Name() string { return f.Label }

// Execute calls Run.
func (f Func) Execute(ctx context.Context) error { return f.Run(ctx) }

// MakeDirectories returns a step that creates each path and any
// missing parents. Existing directories are not an error.
func MakeDirectories(paths ...string) Step {
	return Func{
		Label: "mkdir",
		Run: func(ctx context.Context) error {
			for _, path := range paths {
				if err := os.MkdirAll(path, 0o755); err != nil {
					return fmt.Errorf("creating directory %s: %w", path, err)
				}
			}
			return nil
		},
	}
}

// ExitCode maps an error to a process exit status: 0 for nil, the
// error's own ExitCode() when it (or anything it wraps) provides one,
// and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		if code := coder.ExitCode(); code != 0 {
			return code
		}
	}
	return 1
}
