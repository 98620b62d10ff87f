// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fetch provides transports that copy the content behind a URI
// into a local file.
//
// A [Fetcher] has one job: given a URI and an output path, write the
// bytes to that path or return an error. It never touches any other
// path and never interprets the content. Verification, publishing,
// and retry policy belong to the caller.
//
// Implementations:
//
//   - [HTTP] -- http and https, streaming the response body to disk
//   - [File] -- file:// URIs, for local mirrors and tests
//   - [Mux] -- dispatches on URI scheme
//   - [Func] -- adapts a function, mostly for test fakes
package fetch
