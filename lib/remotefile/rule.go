// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remotefile

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/remotefile/lib/artifactcache"
	"github.com/bureau-foundation/remotefile/lib/buildstep"
	"github.com/bureau-foundation/remotefile/lib/fetch"
)

// Rule is a remote_file declaration: the build target that declared
// it and the spec it resolves to.
type Rule struct {
	Target string
	Spec   Spec
}

// TargetDirectory maps a build target of the form //package/path:name
// to the directory its outputs live in, relative to the output root:
// gen/package/path/name. Targets are the unit of output isolation, so
// two rules never share a directory.
func TargetDirectory(target string) (string, error) {
	rest, ok := strings.CutPrefix(target, "//")
	if !ok {
		return "", fmt.Errorf("target %q must start with //", target)
	}
	packagePath, name, found := strings.Cut(rest, ":")
	if !found || name == "" {
		return "", fmt.Errorf("target %q has no :name", target)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\:`) {
		return "", fmt.Errorf("target %q has an invalid name", target)
	}
	if packagePath != "" && (packagePath == "." || path.Clean(packagePath) != packagePath || !filepath.IsLocal(packagePath)) {
		return "", fmt.Errorf("target %q has an unclean package path", target)
	}
	return filepath.FromSlash(path.Join("gen", packagePath, name)), nil
}

// OutputPath returns the rule's output relative to the output root.
func (r Rule) OutputPath() string { return r.Spec.OutputPath() }

// NewStep builds the fetch step for the rule.
func (r Rule) NewStep(outputRoot string, fetcher fetch.Fetcher, recorder artifactcache.Recorder, options ...Option) (*Step, error) {
	step, err := NewStep(r.Spec, outputRoot, fetcher, recorder, options...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Target, err)
	}
	return step, nil
}

// BuildRule expands the rule into the harness's step list: create the
// destination directory, then the verified fetch. The recorder is only
// called by the fetch step, after a successful publish.
func (r Rule) BuildRule(outputRoot string, fetcher fetch.Fetcher, recorder artifactcache.Recorder, options ...Option) (buildstep.Rule, error) {
	step, err := r.NewStep(outputRoot, fetcher, recorder, options...)
	if err != nil {
		return buildstep.Rule{}, err
	}
	return buildstep.Rule{
		Label: r.Target,
		Steps: []buildstep.Step{
			buildstep.MakeDirectories(filepath.Dir(step.Destination())),
			step,
		},
	}, nil
}
