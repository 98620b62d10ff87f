// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/remotefile/lib/manifest"
	"github.com/bureau-foundation/remotefile/lib/process"
)

// runValidate lists every issue in a manifest and exits 1 if there
// are any.
func runValidate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("remotefile validate", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		return errors.New("validate: exactly one manifest path is required")
	}
	path := flagSet.Arg(0)

	loaded, err := manifest.Load(path)
	if err != nil {
		return err
	}

	issues := loaded.Validate()
	if len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintf(stdout, "%s: %s\n", path, issue)
		}
		return &process.ExitError{Code: 1}
	}

	fmt.Fprintf(stdout, "%s: ok (%d files)\n", path, len(loaded.Files))
	return nil
}
