// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package remotefile implements the verified fetch-and-publish step
// behind remote_file build rules.
//
// A [Spec] declares where content lives, the digest it must have, and
// where in the build output it belongs. [Step] executes one fetch:
//
//  1. fetch into a private staging file under
//     <output root>/.remotefile/scratch/<uuid>/
//  2. hash the staged bytes with the declared algorithm
//  3. on mismatch, delete the staging file and fail
//  4. apply the permission policy for the artifact [Kind]
//  5. rename the staging file onto the destination
//  6. record the destination with the artifact recorder
//
// The destination therefore either does not exist, holds what a
// previous run published, or holds bytes that match the declared
// digest. Nothing in between is ever visible there, and a failed run
// never removes what a previous run published.
//
// Failures are [*Error] values of three kinds: [KindFetch],
// [KindIntegrity], [KindIO]. Each carries an exit code for the
// harness. Nothing is retried inside the step; re-running it is always
// safe.
//
// [Rule] wraps a Spec with the build target that declared it and
// expands into the step list the harness in lib/buildstep executes.
package remotefile
