// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest provides algorithm-tagged content hashes for
// verifying fetched files.
//
// A remote file declaration names exactly one algorithm and the digest
// its content must have. The fetch step hashes the staged bytes with
// that same algorithm and compares raw bytes; nothing is ever
// re-derived or converted between algorithms.
//
// The API surface:
//
//   - [Algorithm] -- SHA1, SHA256, BLAKE2b256, BLAKE3, with canonical
//     string tags used in manifests and logs
//   - [Digest] -- algorithm plus raw sum, formatted as "<alg>:<hex>"
//   - [Parse] and [New] -- build a Digest from its text form
//   - [HashFile], [HashReader], [HashBytes] -- streaming hashing
//
// This package has no dependencies on other packages in this module.
package digest
