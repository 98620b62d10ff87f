// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"
)

// Fetcher writes the content identified by uri to outputPath.
// Implementations create outputPath (the parent directory already
// exists) with a non-executable mode, and remove it again if the
// transfer fails part way.
type Fetcher interface {
	Fetch(ctx context.Context, uri *url.URL, outputPath string) error
}

// Func adapts an ordinary function to the Fetcher interface.
type Func func(ctx context.Context, uri *url.URL, outputPath string) error

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, uri *url.URL, outputPath string) error {
	return f(ctx, uri, outputPath)
}

// ErrUnsupportedScheme is returned by Mux for a scheme with no
// registered fetcher.
var ErrUnsupportedScheme = errors.New("unsupported URI scheme")

// Mux routes fetches by URI scheme. The zero value has no routes.
// Mux is safe for concurrent use.
type Mux struct {
	mu     sync.RWMutex
	routes map[string]Fetcher
}

// NewMux returns a Mux serving http, https, and file with the given
// HTTP fetcher and a File fetcher.
func NewMux(httpFetcher *HTTP) *Mux {
	mux := &Mux{}
	mux.Handle("http", httpFetcher)
	mux.Handle("https", httpFetcher)
	mux.Handle("file", File{})
	return mux
}

// Handle registers fetcher for scheme, replacing any previous route.
func (m *Mux) Handle(scheme string, fetcher Fetcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.routes == nil {
		m.routes = make(map[string]Fetcher)
	}
	m.routes[scheme] = fetcher
}

// Fetch dispatches to the fetcher registered for uri.Scheme.
func (m *Mux) Fetch(ctx context.Context, uri *url.URL, outputPath string) error {
	m.mu.RLock()
	fetcher, ok := m.routes[uri.Scheme]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w %q in %s", ErrUnsupportedScheme, uri.Scheme, uri.Redacted())
	}
	return fetcher.Fetch(ctx, uri, outputPath)
}

// writeStream copies reader into a newly created outputPath. On any
// failure the partial file is removed.
func writeStream(ctx context.Context, reader io.Reader, outputPath string, limit int64) (int64, error) {
	file, err := os.OpenFile(outputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", outputPath, err)
	}

	source := reader
	if limit > 0 {
		// Read one byte past the limit so an oversized body is
		// detected rather than silently truncated.
		source = io.LimitReader(reader, limit+1)
	}
	written, err := io.Copy(file, contextReader{ctx: ctx, reader: source})
	if err == nil && limit > 0 && written > limit {
		err = fmt.Errorf("content exceeds the %d byte limit", limit)
	}
	if err == nil {
		err = file.Sync()
	}
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath)
		return written, fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return written, nil
}

// contextReader stops a copy loop once ctx is cancelled.
type contextReader struct {
	ctx    context.Context
	reader io.Reader
}

func (r contextReader) Read(buffer []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(buffer)
}
