// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration for on-disk state written
// by remotefile (the artifact ledger, cache indexes).
//
// JSON is for things people author or read (manifests, --json output);
// CBOR is for state files the tool writes for itself. Encoding uses
// Core Deterministic Encoding (RFC 8949 §4.2), so the same ledger
// always produces identical bytes and can itself be cached by content.
//
// Types implementing encoding.TextMarshaler, such as digest.Digest,
// are encoded as CBOR text strings.
package codec
