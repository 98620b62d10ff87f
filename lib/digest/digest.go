// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package digest

import (
	"bytes"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// Algorithm identifies the hash function a Digest was computed with.
// The zero value is not a valid algorithm.
type Algorithm uint8

const (
	// SHA1 is the algorithm remote_file rules historically declared
	// (the "sha1" manifest field). Still accepted because upstream
	// mirrors publish SHA-1 sums for most legacy tool downloads.
	SHA1 Algorithm = iota + 1

	// SHA256 is the default for new declarations.
	SHA256

	// BLAKE2b256 is BLAKE2b with a 32-byte output, unkeyed.
	BLAKE2b256

	// BLAKE3 is unkeyed BLAKE3 with a 32-byte output. Note this is not
	// the domain-keyed BLAKE3 used for artifact store addressing.
	BLAKE3
)

// String returns the canonical tag used in "<algorithm>:<hex>" form.
func (a Algorithm) String() string {
	switch a {
	case SHA1:
		return "sha1"
	case SHA256:
		return "sha256"
	case BLAKE2b256:
		return "blake2b-256"
	case BLAKE3:
		return "blake3"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ParseAlgorithm parses a canonical algorithm tag.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "sha1":
		return SHA1, nil
	case "sha256":
		return SHA256, nil
	case "blake2b-256":
		return BLAKE2b256, nil
	case "blake3":
		return BLAKE3, nil
	default:
		return 0, fmt.Errorf("unknown digest algorithm %q", name)
	}
}

// Size returns the digest length in bytes, or 0 for an unknown
// algorithm.
func (a Algorithm) Size() int {
	switch a {
	case SHA1:
		return sha1.Size
	case SHA256:
		return sha256.Size
	case BLAKE2b256:
		return blake2b.Size256
	case BLAKE3:
		return 32
	default:
		return 0
	}
}

// New returns a fresh hasher for the algorithm.
func (a Algorithm) New() (hash.Hash, error) {
	switch a {
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	case BLAKE2b256:
		return blake2b.New256(nil)
	case BLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm %s", a)
	}
}

// Digest is a content hash tagged with the algorithm that produced it.
// Two digests are only comparable when their algorithms match; Equal
// treats differing algorithms as unequal rather than re-deriving one
// from the other.
type Digest struct {
	Algorithm Algorithm
	Sum       []byte
}

// IsZero reports whether d carries no digest value.
func (d Digest) IsZero() bool {
	return d.Algorithm == 0 && len(d.Sum) == 0
}

// Hex returns the lowercase hex encoding of the raw digest bytes.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.Sum)
}

// String returns "<algorithm>:<hex>", the format used in manifests,
// cache keys, and log output.
func (d Digest) String() string {
	return d.Algorithm.String() + ":" + d.Hex()
}

// Equal compares algorithm and raw bytes exactly.
func (d Digest) Equal(other Digest) bool {
	return d.Algorithm == other.Algorithm && bytes.Equal(d.Sum, other.Sum)
}

// Validate checks that the algorithm is known and the sum has the
// algorithm's length.
func (d Digest) Validate() error {
	size := d.Algorithm.Size()
	if size == 0 {
		return fmt.Errorf("unsupported digest algorithm %s", d.Algorithm)
	}
	if len(d.Sum) != size {
		return fmt.Errorf("%s digest is %d bytes, want %d", d.Algorithm, len(d.Sum), size)
	}
	return nil
}

// New builds a Digest from a hex string for a known algorithm.
func New(algorithm Algorithm, hexString string) (Digest, error) {
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return Digest{}, fmt.Errorf("parsing %s digest: %w", algorithm, err)
	}
	result := Digest{Algorithm: algorithm, Sum: decoded}
	if err := result.Validate(); err != nil {
		return Digest{}, err
	}
	return result, nil
}

// Parse parses "<algorithm>:<hex>". A bare 40-character hex string is
// accepted as SHA-1, which is how older rule declarations spelled
// their digests.
func Parse(text string) (Digest, error) {
	name, value, found := strings.Cut(text, ":")
	if !found {
		if len(text) == 2*sha1.Size {
			return New(SHA1, text)
		}
		return Digest{}, fmt.Errorf("digest %q is not of the form <algorithm>:<hex>", text)
	}
	algorithm, err := ParseAlgorithm(name)
	if err != nil {
		return Digest{}, err
	}
	return New(algorithm, value)
}

// MustParse is Parse for constants in tests and tables. It panics on
// malformed input.
func MustParse(text string) Digest {
	parsed, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return parsed
}

// MarshalText implements encoding.TextMarshaler so digests serialize
// as their canonical string in JSON, YAML, and CBOR.
func (d Digest) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Digest{}
		return nil
	}
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// HashReader streams reader through the algorithm's hash function and
// returns the digest along with the number of bytes consumed.
func HashReader(reader io.Reader, algorithm Algorithm) (Digest, int64, error) {
	hasher, err := algorithm.New()
	if err != nil {
		return Digest{}, 0, err
	}
	written, err := io.Copy(hasher, reader)
	if err != nil {
		return Digest{}, written, err
	}
	return Digest{Algorithm: algorithm, Sum: hasher.Sum(nil)}, written, nil
}

// HashBytes computes the digest of data.
func HashBytes(data []byte, algorithm Algorithm) (Digest, error) {
	result, _, err := HashReader(bytes.NewReader(data), algorithm)
	return result, err
}

// HashFile computes the digest of the file at path. The file is
// streamed through the hash function so memory use is constant
// regardless of file size. Also returns the file size in bytes.
func HashFile(path string, algorithm Algorithm) (Digest, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return Digest{}, 0, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	result, size, err := HashReader(file, algorithm)
	if err != nil {
		return Digest{}, 0, fmt.Errorf("hashing %s: %w", path, err)
	}
	return result, size, nil
}
