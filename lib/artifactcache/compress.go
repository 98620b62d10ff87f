// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package artifactcache

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies how a cached blob is compressed. The tag
// is the first byte of every blob file; the values are format
// constants.
type CompressionTag uint8

const (
	// CompressionNone stores content as-is. Right for archives and
	// other already-compressed downloads.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 is the LZ4 frame format. Cheap to decode.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd is zstd at the default level. Better ratio for
	// text-like content.
	CompressionZstd CompressionTag = 2
)

// String returns the configuration name of the tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// ParseCompressionTag parses a configuration name. The empty string
// selects zstd.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd", "":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

// compressStream copies source into destination using tag.
func compressStream(destination io.Writer, source io.Reader, tag CompressionTag) error {
	switch tag {
	case CompressionNone:
		_, err := io.Copy(destination, source)
		return err

	case CompressionLZ4:
		writer := lz4.NewWriter(destination)
		if _, err := io.Copy(writer, source); err != nil {
			writer.Close()
			return fmt.Errorf("lz4 compress: %w", err)
		}
		return writer.Close()

	case CompressionZstd:
		writer, err := zstd.NewWriter(destination)
		if err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		if _, err := io.Copy(writer, source); err != nil {
			writer.Close()
			return fmt.Errorf("zstd compress: %w", err)
		}
		return writer.Close()

	default:
		return fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// decompressStream copies the decoded form of source into destination.
func decompressStream(destination io.Writer, source io.Reader, tag CompressionTag) error {
	switch tag {
	case CompressionNone:
		_, err := io.Copy(destination, source)
		return err

	case CompressionLZ4:
		if _, err := io.Copy(destination, lz4.NewReader(source)); err != nil {
			return fmt.Errorf("lz4 decompress: %w", err)
		}
		return nil

	case CompressionZstd:
		decoder, err := zstd.NewReader(source)
		if err != nil {
			return fmt.Errorf("creating zstd reader: %w", err)
		}
		defer decoder.Close()
		if _, err := io.Copy(destination, decoder); err != nil {
			return fmt.Errorf("zstd decompress: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported compression tag: %d", tag)
	}
}
