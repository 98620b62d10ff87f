// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildstep sequences the steps a build rule produces.
//
// A rule expands into an ordered list of [Step] values. [RunSequence]
// executes them strictly in order and stops at the first failure: a
// failed step aborts the rest of its rule, and the remaining steps are
// reported as "skipped". [RunRules] runs independent rules in parallel
// with a concurrency bound. Rules never share steps, so the only
// coordination between them is the bound itself.
//
// Exit status follows the usual process convention: 0 for success,
// non-zero for failure. An error may choose its own code by
// implementing ExitCode() int; [ExitCode] falls back to 1.
package buildstep
