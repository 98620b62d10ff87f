// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/remotefile/lib/buildstep"
)

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already written its
// own output (for example "validate" listing manifest issues).
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Fatal reports err and exits with the status it carries. Use it in
// main() for errors from run(), where the structured logger may not
// be initialized.
func Fatal(err error) {
	os.Exit(Report(os.Stderr, err))
}

// Report writes "error: err" to w, unless err is an *ExitError, and
// returns the exit status for err: 0 for nil, the code carried by any
// error in the chain that has an ExitCode method, and 1 otherwise.
func Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exitError *ExitError
	if errors.As(err, &exitError) {
		return exitError.Code
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return buildstep.ExitCode(err)
}
