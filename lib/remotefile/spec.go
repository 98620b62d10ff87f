// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remotefile

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/remotefile/lib/digest"
)

// StateDirectory is the directory under the output root that holds
// remotefile's own state (scratch space, artifact ledger). Specs may
// not publish into it.
const StateDirectory = ".remotefile"

// Kind says how a published artifact is used.
type Kind uint8

const (
	// KindData is a plain file. Published without execute bits.
	KindData Kind = iota

	// KindExecutable is a program. Published with execute bits for
	// owner, group, and other.
	KindExecutable
)

// String returns the manifest spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindExecutable:
		return "executable"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// ParseKind parses "data" or "executable". The empty string is data.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "data", "":
		return KindData, nil
	case "executable":
		return KindExecutable, nil
	default:
		return 0, fmt.Errorf("unknown artifact type %q (want data or executable)", name)
	}
}

// Spec declares one remote file. It is built once when the build graph
// is materialized and never modified afterwards.
type Spec struct {
	// URI is where the content comes from.
	URI string

	// Expected is the digest the content must have. Required: there
	// are no unverified fetches.
	Expected digest.Digest

	// Directory is the destination directory relative to the output
	// root. Empty means the root itself.
	Directory string

	// Name is the output file name.
	Name string

	// Kind selects the permission policy.
	Kind Kind
}

// Validate checks that the spec can be executed safely: a parseable
// absolute URI, a well-formed digest, and a destination that stays
// inside the output root.
func (s Spec) Validate() error {
	var problems []error

	if s.URI == "" {
		problems = append(problems, errors.New("uri is required"))
	} else if parsed, err := url.Parse(s.URI); err != nil {
		problems = append(problems, fmt.Errorf("uri %q: %w", s.URI, err))
	} else if parsed.Scheme == "" {
		problems = append(problems, fmt.Errorf("uri %q has no scheme", s.URI))
	}

	if s.Expected.IsZero() {
		problems = append(problems, errors.New("expected digest is required"))
	} else if err := s.Expected.Validate(); err != nil {
		problems = append(problems, fmt.Errorf("expected digest: %w", err))
	}

	// A directory that cleans to "." is the root itself, where the
	// state directory's own name is reserved.
	atRoot := true
	if s.Directory != "" {
		cleaned := filepath.Clean(s.Directory)
		if !filepath.IsLocal(s.Directory) {
			problems = append(problems, fmt.Errorf("directory %q escapes the output root", s.Directory))
		} else if cleaned != "." {
			atRoot = false
			if first, _, _ := strings.Cut(filepath.ToSlash(cleaned), "/"); first == StateDirectory {
				problems = append(problems, fmt.Errorf("directory %q is reserved", s.Directory))
			}
		}
	}

	switch {
	case s.Name == "":
		problems = append(problems, errors.New("name is required"))
	case s.Name == "." || s.Name == ".." || strings.ContainsAny(s.Name, `/\`):
		problems = append(problems, fmt.Errorf("name %q must be a single path element", s.Name))
	case atRoot && s.Name == StateDirectory:
		problems = append(problems, fmt.Errorf("name %q is reserved", s.Name))
	}

	if s.Kind != KindData && s.Kind != KindExecutable {
		problems = append(problems, fmt.Errorf("unknown kind %s", s.Kind))
	}

	return errors.Join(problems...)
}

// OutputPath returns the destination relative to the output root, in
// the platform's separator.
func (s Spec) OutputPath() string {
	return filepath.Join(s.Directory, s.Name)
}
