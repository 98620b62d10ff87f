// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
)

// File copies the local file named by a file:// URI.
type File struct{}

// Fetch copies uri.Path into outputPath.
func (File) Fetch(ctx context.Context, uri *url.URL, outputPath string) error {
	if uri.Scheme != "file" {
		return fmt.Errorf("file fetcher cannot serve %s", uri.Redacted())
	}
	if uri.Host != "" && uri.Host != "localhost" {
		return fmt.Errorf("file URI %s names remote host %q", uri.Redacted(), uri.Host)
	}
	source, err := os.Open(uri.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", uri.Path, err)
	}
	defer source.Close()

	if _, err := writeStream(ctx, source, outputPath, 0); err != nil {
		return fmt.Errorf("copying %s: %w", uri.Path, err)
	}
	return nil
}
