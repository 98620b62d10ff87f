// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// remotefile fetches the remote files a build declares, verifies each
// against its declared digest, and publishes it atomically under the
// build output root.
//
// Subcommands:
//
//	remotefile fetch [--config FILE] [--output-root DIR] [--concurrency N] MANIFEST
//	remotefile hash [--algorithm ALG] FILE...
//	remotefile validate MANIFEST
//	remotefile --version
//
// The exit status of "fetch" reports the first failing rule: 2 for a
// transport failure, 3 for a digest mismatch, 4 for a local I/O error.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/remotefile/lib/process"
	"github.com/bureau-foundation/remotefile/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		process.Fatal(err)
	}
}

// command is one subcommand. run receives the arguments after the
// subcommand name.
type command struct {
	summary string
	run     func(ctx context.Context, args []string, stdout, stderr io.Writer) error
}

var commands = map[string]command{
	"fetch":    {"fetch, verify, and publish every file in a manifest", runFetch},
	"hash":     {"print the digest of local files", runHash},
	"validate": {"check a manifest without fetching anything", runValidate},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return &process.ExitError{Code: 2}
	}

	switch args[0] {
	case "--version", "version":
		version.Fprint(stdout, "remotefile")
		return nil
	case "-h", "--help", "help":
		printUsage(stdout)
		return nil
	}

	selected, ok := commands[args[0]]
	if !ok {
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return selected.run(ctx, args[1:], stdout, stderr)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `remotefile: verified fetch-and-publish of remote build inputs.

Usage:
  remotefile <command> [flags] [arguments]

Commands:
  fetch      %s
  hash       %s
  validate   %s

Run "remotefile <command> --help" for the flags of a command.
`, commands["fetch"].summary, commands["hash"].summary, commands["validate"].summary)
}
