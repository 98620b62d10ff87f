// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifactcache tracks which output paths a build produced and
// keeps a local, content-addressed copy of fetched files.
//
// A [Recorder] is told about each path a step publishes. [Ledger] is
// the standard recorder: an ordered, deduplicated set of output-root
// relative paths, persisted as deterministic CBOR.
//
// [Store] is a local cache of verified files keyed by the digest they
// were verified against. Blobs are stored compressed (none, lz4, or
// zstd; the tag is the first byte of the blob) under
// <root>/<algorithm>/<first two hex chars>/<hex>. A cache hit is
// served through [Store.Fetcher], so a cached file goes through the
// same staging and verification as a network fetch: a corrupt cache
// entry fails verification instead of being published.
package artifactcache
