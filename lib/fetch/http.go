// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// maxErrorBody bounds how much of a non-2xx response body is kept for
// diagnostics.
const maxErrorBody = 4 << 10

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URI        string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("GET %s: %s", e.URI, e.Status)
	}
	return fmt.Sprintf("GET %s: %s: %s", e.URI, e.Status, body)
}

// HTTP fetches http and https URIs with a plain GET.
type HTTP struct {
	// Client performs requests. Nil uses http.DefaultClient. Request
	// timeouts belong on the client; cancellation comes from the
	// context passed to Fetch.
	Client *http.Client

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	// MaxBytes rejects bodies larger than this many bytes. Zero means
	// unbounded.
	MaxBytes int64

	// Logger receives one debug record per completed transfer. Nil
	// disables logging.
	Logger *slog.Logger
}

// Fetch streams the response body for uri into outputPath.
func (h *HTTP) Fetch(ctx context.Context, uri *url.URL, outputPath string) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.String(), nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", uri.Redacted(), err)
	}
	if h.UserAgent != "" {
		request.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	response, err := client.Do(request)
	if err != nil {
		return fmt.Errorf("GET %s: %w", uri.Redacted(), err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		return &StatusError{
			URI:        uri.Redacted(),
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Body:       string(body),
		}
	}
	if h.MaxBytes > 0 && response.ContentLength > h.MaxBytes {
		return fmt.Errorf("GET %s: content length %d exceeds the %d byte limit",
			uri.Redacted(), response.ContentLength, h.MaxBytes)
	}

	written, err := writeStream(ctx, response.Body, outputPath, h.MaxBytes)
	if err != nil {
		return fmt.Errorf("GET %s: %w", uri.Redacted(), err)
	}
	if h.Logger != nil {
		h.Logger.Debug("http fetch complete",
			"uri", uri.Redacted(),
			"bytes", written,
			"status", response.StatusCode,
		)
	}
	return nil
}
