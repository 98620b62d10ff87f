// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/remotefile/lib/config"
)

// newLogger creates the command logger. With format "auto" it uses
// slog.TextHandler when w is a terminal and slog.JSONHandler when it
// is piped or redirected (CI, build systems).
func newLogger(cfg config.LogConfig, level slog.Level, w io.Writer) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}

	text := cfg.Format == "text"
	if cfg.Format == "auto" {
		file, ok := w.(*os.File)
		text = ok && term.IsTerminal(int(file.Fd()))
	}

	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
