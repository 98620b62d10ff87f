// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifactcache

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/remotefile/lib/atomicfile"
	"github.com/bureau-foundation/remotefile/lib/digest"
	"github.com/bureau-foundation/remotefile/lib/fetch"
)

// tmpDir holds in-progress blob writes. It lives under the store root
// so the final rename never crosses filesystems.
const tmpDir = "tmp"

// ErrNotCached is returned by Materialize for a key with no blob.
var ErrNotCached = errors.New("not in artifact cache")

// Store is a local cache of verified files keyed by digest.
type Store struct {
	root        string
	compression CompressionTag
	logger      *slog.Logger
}

// OpenStore creates (if needed) and opens a store rooted at root.
// New blobs are written with compression. A nil logger discards.
func OpenStore(root string, compression CompressionTag, logger *slog.Logger) (*Store, error) {
	switch compression {
	case CompressionNone, CompressionLZ4, CompressionZstd:
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", compression)
	}
	if err := os.MkdirAll(filepath.Join(root, tmpDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact cache %s: %w", root, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{root: root, compression: compression, logger: logger}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// BlobPath returns where the blob for key lives.
func (s *Store) BlobPath(key digest.Digest) string {
	hex := key.Hex()
	shard := hex
	if len(hex) > 2 {
		shard = hex[:2]
	}
	return filepath.Join(s.root, key.Algorithm.String(), shard, hex)
}

// Has reports whether a blob exists for key.
func (s *Store) Has(key digest.Digest) bool {
	_, err := os.Stat(s.BlobPath(key))
	return err == nil
}

// Put copies sourcePath into the cache under key. The source is hashed
// first and refused if it does not match key, so the cache only ever
// holds content that once verified. An existing blob for key is left
// alone.
func (s *Store) Put(key digest.Digest, sourcePath string) error {
	if err := key.Validate(); err != nil {
		return fmt.Errorf("cache key: %w", err)
	}
	if s.Has(key) {
		return nil
	}

	actual, size, err := digest.HashFile(sourcePath, key.Algorithm)
	if err != nil {
		return err
	}
	if !actual.Equal(key) {
		return fmt.Errorf("refusing to cache %s: content is %s, key is %s", sourcePath, actual, key)
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", sourcePath, err)
	}
	defer source.Close()

	tmpFile, err := os.CreateTemp(filepath.Join(s.root, tmpDir), "blob-*")
	if err != nil {
		return fmt.Errorf("creating temp blob: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := writer.WriteByte(byte(s.compression)); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing blob header: %w", err)
	}
	if err := compressStream(writer, source, s.compression); err != nil {
		tmpFile.Close()
		return fmt.Errorf("compressing %s: %w", sourcePath, err)
	}
	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("flushing blob: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp blob: %w", err)
	}

	finalPath := s.BlobPath(key)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("creating cache shard directory: %w", err)
	}
	if err := atomicfile.Commit(tmpPath, finalPath); err != nil {
		return err
	}

	success = true
	s.logger.Debug("cached artifact",
		"digest", key.String(),
		"bytes", size,
		"compression", s.compression.String(),
	)
	return nil
}

// Materialize decompresses the blob for key into outputPath. The
// output is created with mode 0644. Returns ErrNotCached when there is
// no blob. The content is not re-verified here; callers publish it
// through the normal verification path.
func (s *Store) Materialize(key digest.Digest, outputPath string) error {
	blob, err := os.Open(s.BlobPath(key))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", key, ErrNotCached)
	}
	if err != nil {
		return fmt.Errorf("opening cached blob for %s: %w", key, err)
	}
	defer blob.Close()

	reader := bufio.NewReader(blob)
	header, err := reader.ReadByte()
	if err != nil {
		return fmt.Errorf("reading blob header for %s: %w", key, err)
	}

	output, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	writer := bufio.NewWriter(output)
	err = decompressStream(writer, reader, CompressionTag(header))
	if err == nil {
		err = writer.Flush()
	}
	if err == nil {
		err = output.Sync()
	}
	if closeErr := output.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("materializing %s: %w", key, err)
	}
	return nil
}

// Remove deletes the blob for key. Removing a missing blob is not an
// error.
func (s *Store) Remove(key digest.Digest) error {
	err := os.Remove(s.BlobPath(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing cached blob for %s: %w", key, err)
	}
	return nil
}

// Fetcher returns a fetch.Fetcher that ignores the URI and serves the
// blob for key.
func (s *Store) Fetcher(key digest.Digest) fetch.Fetcher {
	return fetch.Func(func(ctx context.Context, uri *url.URL, outputPath string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.logger.Debug("serving from artifact cache", "uri", uri.Redacted(), "digest", key.String())
		return s.Materialize(key, outputPath)
	})
}

// ReadThrough returns a fetch.Fetcher that serves key from the store
// when it is present and otherwise delegates to fallback. A hit is
// hashed against key before it is returned: a blob that cannot be
// materialized, or that decodes to the wrong content, is evicted and
// the fetch falls back to the origin. lookup, when non-nil, is told
// whether each fetch was a hit. The caller still verifies the result.
func (s *Store) ReadThrough(key digest.Digest, fallback fetch.Fetcher, lookup func(hit bool)) fetch.Fetcher {
	return fetch.Func(func(ctx context.Context, uri *url.URL, outputPath string) error {
		if s.Has(key) {
			err := s.Fetcher(key).Fetch(ctx, uri, outputPath)
			if err == nil {
				err = s.verifyMaterialized(key, outputPath)
			}
			if err == nil {
				if lookup != nil {
					lookup(true)
				}
				return nil
			}
			if ctx.Err() != nil {
				return err
			}
			os.Remove(outputPath)
			s.logger.Warn("evicting unusable artifact cache entry, fetching from origin",
				"uri", uri.Redacted(), "digest", key.String(), "error", err)
			if removeErr := s.Remove(key); removeErr != nil {
				s.logger.Warn("evicting artifact cache entry failed", "digest", key.String(), "error", removeErr)
			}
		}
		if lookup != nil {
			lookup(false)
		}
		return fallback.Fetch(ctx, uri, outputPath)
	})
}

func (s *Store) verifyMaterialized(key digest.Digest, outputPath string) error {
	actual, _, err := digest.HashFile(outputPath, key.Algorithm)
	if err != nil {
		return err
	}
	if !actual.Equal(key) {
		return fmt.Errorf("cached blob for %s decodes to %s", key, actual)
	}
	return nil
}
