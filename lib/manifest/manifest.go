// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/remotefile/lib/digest"
	"github.com/bureau-foundation/remotefile/lib/remotefile"
)

// Manifest is the top-level manifest document.
type Manifest struct {
	// Description is free text shown by "remotefile validate".
	Description string `json:"description,omitempty"`

	Files []File `json:"files"`
}

// File declares one remote file.
type File struct {
	// Target is the declaring build target, //package/path:name.
	Target string `json:"target"`

	// URL is the source. http, https, and file schemes are supported
	// by the default transport.
	URL string `json:"url"`

	// Exactly one of SHA1, SHA256, and Digest is set. SHA1 and SHA256
	// are bare hex; Digest is "<algorithm>:<hex>".
	SHA1   string `json:"sha1,omitempty"`
	SHA256 string `json:"sha256,omitempty"`
	Digest string `json:"digest,omitempty"`

	// Out is the output file name.
	Out string `json:"out"`

	// Type is "data" (the default) or "executable".
	Type string `json:"type,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data and
// unmarshals the result. Unknown fields are rejected so a misspelled
// digest field cannot silently turn into a missing one.
func Parse(data []byte) (*Manifest, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()

	var manifest Manifest
	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &manifest, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	manifest, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

// ExpectedDigest returns the digest the file declares.
func (f File) ExpectedDigest() (digest.Digest, error) {
	var declared []string
	if f.SHA1 != "" {
		declared = append(declared, "sha1")
	}
	if f.SHA256 != "" {
		declared = append(declared, "sha256")
	}
	if f.Digest != "" {
		declared = append(declared, "digest")
	}
	switch len(declared) {
	case 0:
		return digest.Digest{}, errors.New("one of sha1, sha256, or digest is required")
	case 1:
	default:
		return digest.Digest{}, fmt.Errorf("%s are mutually exclusive (set exactly one)", strings.Join(declared, " and "))
	}

	switch {
	case f.SHA1 != "":
		return digest.New(digest.SHA1, f.SHA1)
	case f.SHA256 != "":
		return digest.New(digest.SHA256, f.SHA256)
	default:
		return digest.Parse(f.Digest)
	}
}

// Rule converts the declaration into a remote_file rule.
func (f File) Rule() (remotefile.Rule, error) {
	directory, err := remotefile.TargetDirectory(f.Target)
	if err != nil {
		return remotefile.Rule{}, err
	}
	expected, err := f.ExpectedDigest()
	if err != nil {
		return remotefile.Rule{}, err
	}
	kind, err := remotefile.ParseKind(f.Type)
	if err != nil {
		return remotefile.Rule{}, err
	}
	spec := remotefile.Spec{
		URI:       f.URL,
		Expected:  expected,
		Directory: directory,
		Name:      f.Out,
		Kind:      kind,
	}
	if err := spec.Validate(); err != nil {
		return remotefile.Rule{}, err
	}
	return remotefile.Rule{Target: f.Target, Spec: spec}, nil
}

// Rules converts every declaration. It fails with all validation
// issues joined when the manifest is invalid.
func (m *Manifest) Rules() ([]remotefile.Rule, error) {
	if issues := m.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("invalid manifest:\n  %s", strings.Join(issues, "\n  "))
	}
	rules := make([]remotefile.Rule, 0, len(m.Files))
	for _, file := range m.Files {
		rule, err := file.Rule()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file.Target, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
