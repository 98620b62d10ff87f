// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/remotefile/lib/digest"
)

// runHash prints "<algorithm>:<hex>  <file>" for each file, the value
// to paste into a manifest.
func runHash(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("remotefile hash", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	algorithmName := flagSet.StringP("algorithm", "a", "sha256", "digest algorithm: sha1, sha256, blake2b-256, blake3")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	algorithm, err := digest.ParseAlgorithm(*algorithmName)
	if err != nil {
		return err
	}
	if flagSet.NArg() == 0 {
		return errors.New("hash: at least one file is required")
	}

	for _, path := range flagSet.Args() {
		if err := ctx.Err(); err != nil {
			return err
		}
		sum, _, err := digest.HashFile(path, algorithm)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s  %s\n", sum, path)
	}
	return nil
}
