// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/remotefile/lib/remotefile"
)

// Validate checks the manifest for structural issues. Returns a list
// of human-readable issue descriptions; an empty list means the
// manifest is valid.
//
// Checks include:
//   - At least one file is declared
//   - Each target is a well-formed //package:name and appears once
//   - Each file sets exactly one of sha1, sha256, digest, and it parses
//   - url, out, and type are valid for a remote file spec
//   - No file publishes onto, or above, another target's output
//     directory
func (m *Manifest) Validate() []string {
	var issues []string
	var published []publishedFile

	if len(m.Files) == 0 {
		issues = append(issues, "manifest declares no files (at least one is required)")
	}

	targets := make(map[string]int)
	for index, file := range m.Files {
		prefix := fmt.Sprintf("files[%d]", index)
		if file.Target == "" {
			issues = append(issues, fmt.Sprintf("%s: target is required", prefix))
			continue
		}
		prefix = fmt.Sprintf("files[%d] %q", index, file.Target)

		if previous, seen := targets[file.Target]; seen {
			issues = append(issues, fmt.Sprintf("%s: duplicate target (first declared at files[%d])", prefix, previous))
			continue
		}
		targets[file.Target] = index

		directory, err := remotefile.TargetDirectory(file.Target)
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
			continue
		}

		expected, err := file.ExpectedDigest()
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
		}

		kind, err := remotefile.ParseKind(file.Type)
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
		}

		spec := remotefile.Spec{URI: file.URL, Expected: expected, Directory: directory, Name: file.Out, Kind: kind}
		if err := spec.Validate(); err != nil {
			for _, problem := range splitJoined(err) {
				// The digest problem was already reported above with
				// the manifest field names.
				if expected.IsZero() && strings.HasPrefix(problem.Error(), "expected digest") {
					continue
				}
				issues = append(issues, fmt.Sprintf("%s: %v", prefix, problem))
			}
			continue
		}

		published = append(published, publishedFile{
			prefix:    prefix,
			target:    file.Target,
			directory: filepath.ToSlash(directory),
			output:    filepath.ToSlash(spec.OutputPath()),
		})
	}

	// A file whose output is another target's directory, or one of its
	// ancestors, would leave that target nowhere to publish.
	for _, file := range published {
		for _, other := range published {
			if other.target == file.target {
				continue
			}
			if other.directory == file.output || strings.HasPrefix(other.directory, file.output+"/") {
				issues = append(issues, fmt.Sprintf("%s: output %s collides with the output directory of %s (%s)",
					file.prefix, file.output, other.target, other.directory))
			}
		}
	}

	return issues
}

type publishedFile struct {
	prefix    string
	target    string
	directory string
	output    string
}

func splitJoined(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
