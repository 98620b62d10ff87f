// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remotefile

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/remotefile/lib/buildstep"
	"github.com/bureau-foundation/remotefile/lib/digest"
)

func validSpec() Spec {
	return Spec{
		URI:       "https://example.com/tool.tar.gz",
		Expected:  digest.MustParse("sha1:936343b66c94335c0f6d25f7c9bcb0a12262d191"),
		Directory: filepath.Join("gen", "tools"),
		Name:      "tool.tar.gz",
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantErr bool
	}{
		{"valid", func(*Spec) {}, false},
		{"root directory", func(s *Spec) { s.Directory = "" }, false},
		{"executable", func(s *Spec) { s.Kind = KindExecutable }, false},
		{"file uri", func(s *Spec) { s.URI = "file:///srv/mirror/tool.tar.gz" }, false},
		{"missing uri", func(s *Spec) { s.URI = "" }, true},
		{"relative uri", func(s *Spec) { s.URI = "mirror/tool.tar.gz" }, true},
		{"unparseable uri", func(s *Spec) { s.URI = "http://[::1" }, true},
		{"missing digest", func(s *Spec) { s.Expected = digest.Digest{} }, true},
		{"short digest", func(s *Spec) { s.Expected = digest.Digest{Algorithm: digest.SHA1, Sum: []byte{1, 2}} }, true},
		{"absolute directory", func(s *Spec) { s.Directory = "/etc" }, true},
		{"escaping directory", func(s *Spec) { s.Directory = filepath.Join("..", "elsewhere") }, true},
		{"state directory", func(s *Spec) { s.Directory = filepath.Join(StateDirectory, "scratch") }, true},
		{"state directory name", func(s *Spec) { s.Directory = ""; s.Name = StateDirectory }, true},
		{"state directory name under dot", func(s *Spec) { s.Directory = "."; s.Name = StateDirectory }, true},
		{"state directory name under collapsed path", func(s *Spec) { s.Directory = filepath.Join("gen", ".."); s.Name = StateDirectory }, true},
		{"state directory under collapsed path", func(s *Spec) { s.Directory = "gen/../" + StateDirectory }, true},
		{"state directory name in subdirectory", func(s *Spec) { s.Name = StateDirectory }, false},
		{"missing name", func(s *Spec) { s.Name = "" }, true},
		{"dot name", func(s *Spec) { s.Name = ".." }, true},
		{"nested name", func(s *Spec) { s.Name = "a/b" }, true},
		{"unknown kind", func(s *Spec) { s.Kind = Kind(7) }, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			spec := validSpec()
			test.mutate(&spec)
			err := spec.Validate()
			if test.wantErr && err == nil {
				t.Error("Validate should fail")
			}
			if !test.wantErr && err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestSpecValidateReportsEveryProblem(t *testing.T) {
	err := Spec{}.Validate()
	if err == nil {
		t.Fatal("empty spec should be invalid")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("error %T does not join its problems", err)
	}
	// uri, digest, and name.
	if got := len(joined.Unwrap()); got != 3 {
		t.Errorf("got %d problems, want 3: %v", got, err)
	}
}

func TestOutputPath(t *testing.T) {
	spec := validSpec()
	if got, want := spec.OutputPath(), filepath.Join("gen", "tools", "tool.tar.gz"); got != want {
		t.Errorf("OutputPath = %s, want %s", got, want)
	}
	spec.Directory = ""
	if got := spec.OutputPath(); got != "tool.tar.gz" {
		t.Errorf("OutputPath with empty directory = %s", got)
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"", "data", "executable"} {
		kind, err := ParseKind(name)
		if err != nil {
			t.Errorf("ParseKind(%q): %v", name, err)
			continue
		}
		if name != "" && kind.String() != name {
			t.Errorf("ParseKind(%q).String() = %s", name, kind)
		}
	}
	if _, err := ParseKind("binary"); err == nil {
		t.Error("ParseKind should reject an unknown type")
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection reset")
	tests := []struct {
		err      *Error
		sentinel error
		label    string
		exitCode int
	}{
		{&Error{Kind: KindFetch, URI: "https://example.com", Err: cause}, ErrFetch, "fetch_failure", 2},
		{&Error{Kind: KindIntegrity, URI: "https://example.com"}, ErrIntegrity, "integrity_failure", 3},
		{&Error{Kind: KindIO, Op: "rename", Path: "/out", Err: cause}, ErrIO, "io_error", 4},
	}

	for _, test := range tests {
		t.Run(test.label, func(t *testing.T) {
			wrapped := fmt.Errorf("rule //a:b: %w", test.err)
			if !errors.Is(wrapped, test.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", wrapped, test.sentinel)
			}
			for _, other := range []error{ErrFetch, ErrIntegrity, ErrIO} {
				if other != test.sentinel && errors.Is(wrapped, other) {
					t.Errorf("%v should not match %v", wrapped, other)
				}
			}
			if got := KindOf(wrapped); got != test.err.Kind {
				t.Errorf("KindOf = %v, want %v", got, test.err.Kind)
			}
			if got := test.err.Kind.Label(); got != test.label {
				t.Errorf("Label = %s, want %s", got, test.label)
			}
			if got := buildstep.ExitCode(wrapped); got != test.exitCode {
				t.Errorf("ExitCode = %d, want %d", got, test.exitCode)
			}
		})
	}

	if !errors.Is(tests[0].err, cause) {
		t.Error("fetch error should unwrap to its cause")
	}
	if KindOf(cause) != 0 {
		t.Error("KindOf of a foreign error should be 0")
	}
}
