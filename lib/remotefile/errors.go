// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remotefile

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/remotefile/lib/digest"
)

// ErrorKind classifies a step failure.
type ErrorKind uint8

const (
	// KindFetch: the fetcher could not deliver the content (DNS,
	// connection reset, non-2xx response, unsupported scheme, ...).
	KindFetch ErrorKind = iota + 1

	// KindIntegrity: the content arrived but its digest is wrong.
	KindIntegrity

	// KindIO: a local filesystem operation failed.
	KindIO
)

// Sentinels for errors.Is. An *Error matches the sentinel for its
// kind.
var (
	ErrFetch     = errors.New("fetch failure")
	ErrIntegrity = errors.New("integrity verification failure")
	ErrIO        = errors.New("I/O error")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindFetch:
		return ErrFetch
	case KindIntegrity:
		return ErrIntegrity
	case KindIO:
		return ErrIO
	default:
		return nil
	}
}

// String returns the human-readable kind.
func (k ErrorKind) String() string {
	if sentinel := k.sentinel(); sentinel != nil {
		return sentinel.Error()
	}
	return fmt.Sprintf("unknown error kind %d", uint8(k))
}

// Label returns the snake_case form used in metrics and trace
// attributes.
func (k ErrorKind) Label() string {
	switch k {
	case KindFetch:
		return "fetch_failure"
	case KindIntegrity:
		return "integrity_failure"
	case KindIO:
		return "io_error"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit status the harness reports for
// this kind.
func (k ErrorKind) ExitCode() int {
	switch k {
	case KindFetch:
		return 2
	case KindIntegrity:
		return 3
	case KindIO:
		return 4
	default:
		return 1
	}
}

// Error is the error returned by Step.Execute.
type Error struct {
	Kind ErrorKind

	// Op names the operation that failed ("fetch", "hash", "publish", ...).
	Op string

	// URI is the source being fetched.
	URI string

	// Path is the file the operation was working on. Empty when Err
	// already names it.
	Path string

	// Expected and Computed are set for KindIntegrity.
	Expected digest.Digest
	Computed digest.Digest

	// Err is the underlying cause. Nil for KindIntegrity.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIntegrity:
		return fmt.Sprintf("%s: content of %s does not match: expected %s, computed %s",
			e.Kind, e.URI, e.Expected, e.Computed)
	case KindFetch:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.URI, e.Err)
	default:
		if e.Path == "" {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Path, e.Err)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// ExitCode implements the exit-status contract used by lib/buildstep.
func (e *Error) ExitCode() int { return e.Kind.ExitCode() }

// KindOf returns the ErrorKind of the first *Error in err's chain, or
// 0 when there is none.
func KindOf(err error) ErrorKind {
	var stepError *Error
	if errors.As(err, &stepError) {
		return stepError.Kind
	}
	return 0
}
