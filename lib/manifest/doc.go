// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest parses remote file manifests: JSONC files (JSON
// extended with comments and trailing commas) that declare the
// remote_file rules of a build.
//
// The typical flow:
//
//  1. Load or Parse: JSONC bytes -> [Manifest]
//  2. Validate: structural checks, every issue reported at once
//  3. Rules: one [remotefile.Rule] per declared file
//
// A file's destination directory is derived from its target, so two
// declarations never publish into each other's directories.
package manifest
