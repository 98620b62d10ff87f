// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remotefile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/bureau-foundation/remotefile/lib/artifactcache"
	"github.com/bureau-foundation/remotefile/lib/atomicfile"
	"github.com/bureau-foundation/remotefile/lib/clock"
	"github.com/bureau-foundation/remotefile/lib/digest"
	"github.com/bureau-foundation/remotefile/lib/fetch"
)

// Observer receives one call per Execute. outcome is "ok" or an
// ErrorKind label; bytes is the size of the published file (zero on
// failure).
type Observer interface {
	ObserveFetch(outcome string, bytes int64, duration time.Duration)
}

// Step fetches, verifies, and publishes one remote file. A Step may be
// executed any number of times; each execution is independent.
type Step struct {
	spec       Spec
	uri        *url.URL
	outputRoot string
	fetcher    fetch.Fetcher
	recorder   artifactcache.Recorder

	logger   *slog.Logger
	clock    clock.Clock
	tracer   trace.Tracer
	observer Observer
}

// Option configures a Step.
type Option func(*Step)

// WithLogger sets the structured logger. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Step) { s.logger = logger }
}

// WithClock sets the clock used to measure durations.
func WithClock(c clock.Clock) Option {
	return func(s *Step) { s.clock = c }
}

// WithTracer sets the tracer that receives one span per execution.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Step) { s.tracer = tracer }
}

// WithObserver sets the metrics observer.
func WithObserver(observer Observer) Option {
	return func(s *Step) { s.observer = observer }
}

// NewStep validates spec and returns a step that publishes under
// outputRoot. fetcher and recorder are required.
func NewStep(spec Spec, outputRoot string, fetcher fetch.Fetcher, recorder artifactcache.Recorder, options ...Option) (*Step, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid remote file spec: %w", err)
	}
	if outputRoot == "" {
		return nil, errors.New("output root is required")
	}
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if recorder == nil {
		return nil, errors.New("artifact recorder is required")
	}
	// Validate already proved this parses.
	uri, _ := url.Parse(spec.URI)

	step := &Step{
		spec:       spec,
		uri:        uri,
		outputRoot: outputRoot,
		fetcher:    fetcher,
		recorder:   recorder,
	}
	for _, option := range options {
		option(step)
	}
	if step.logger == nil {
		step.logger = slog.New(slog.DiscardHandler)
	}
	if step.clock == nil {
		step.clock = clock.Real()
	}
	if step.tracer == nil {
		step.tracer = noop.NewTracerProvider().Tracer("")
	}
	return step, nil
}

// Name implements buildstep.Step.
func (s *Step) Name() string { return "remote_file" }

// Spec returns the spec the step was built from.
func (s *Step) Spec() Spec { return s.spec }

// Destination returns the output-root-joined path the step publishes
// to.
func (s *Step) Destination() string {
	return filepath.Join(s.outputRoot, s.spec.OutputPath())
}

// ScratchRoot returns the directory under which staging files are
// created.
func (s *Step) ScratchRoot() string {
	return filepath.Join(s.outputRoot, StateDirectory, "scratch")
}

// Execute runs fetch, verify, publish, record in order. On failure the
// destination is exactly as it was before the call.
func (s *Step) Execute(ctx context.Context) (err error) {
	start := s.clock.Now()
	destination := s.Destination()
	ctx, span := s.tracer.Start(ctx, "remotefile.fetch", trace.WithAttributes(
		attribute.String("remotefile.uri", s.uri.Redacted()),
		attribute.String("remotefile.destination", s.spec.OutputPath()),
		attribute.String("remotefile.digest", s.spec.Expected.String()),
		attribute.String("remotefile.kind", s.spec.Kind.String()),
	))

	var published int64
	defer func() {
		duration := clock.Since(s.clock, start)
		outcome := "ok"
		if err != nil {
			outcome = KindOf(err).Label()
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.String("remotefile.outcome", outcome))
		span.End()
		if s.observer != nil {
			s.observer.ObserveFetch(outcome, published, duration)
		}
	}()

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return s.ioError("mkdir", filepath.Dir(destination), err)
	}

	// Each execution gets its own scratch directory, so concurrent or
	// repeated executions never share a staging path, and whatever is
	// left over on failure goes with the directory.
	scratch := filepath.Join(s.ScratchRoot(), uuid.NewString())
	if err := os.MkdirAll(scratch, 0o700); err != nil {
		return s.ioError("mkdir", scratch, err)
	}
	defer os.RemoveAll(scratch)
	staging := filepath.Join(scratch, s.spec.Name)

	if err := s.fetcher.Fetch(ctx, s.uri, staging); err != nil {
		os.Remove(staging)
		s.logger.Debug("remote file fetch failed", "uri", s.uri.Redacted(), "error", err)
		return &Error{Kind: KindFetch, Op: "fetch", URI: s.uri.Redacted(), Path: staging, Err: err}
	}

	computed, size, err := digest.HashFile(staging, s.spec.Expected.Algorithm)
	if err != nil {
		os.Remove(staging)
		return s.ioError("hash", staging, err)
	}
	if !computed.Equal(s.spec.Expected) {
		os.Remove(staging)
		s.logger.Warn("remote file digest mismatch",
			"uri", s.uri.Redacted(),
			"expected", s.spec.Expected.String(),
			"computed", computed.String(),
			"bytes", size,
		)
		return &Error{
			Kind:     KindIntegrity,
			Op:       "verify",
			URI:      s.uri.Redacted(),
			Path:     staging,
			Expected: s.spec.Expected,
			Computed: computed,
		}
	}

	// Permissions are settled before the rename, so an executable is
	// never visible at the destination without its execute bits.
	if err := applyPermissions(staging, s.spec.Kind); err != nil {
		os.Remove(staging)
		return s.ioError("chmod", staging, err)
	}

	// Fetchers are not required to sync what they write. Errors from
	// SyncFile and Commit already carry their paths.
	if err := atomicfile.SyncFile(staging); err != nil {
		os.Remove(staging)
		return &Error{Kind: KindIO, Op: "sync", URI: s.uri.Redacted(), Err: err}
	}

	if err := atomicfile.Commit(staging, destination); err != nil {
		os.Remove(staging)
		return &Error{Kind: KindIO, Op: "publish", URI: s.uri.Redacted(), Err: err}
	}
	published = size

	s.recorder.RecordArtifact(s.spec.OutputPath())

	s.logger.Info("published remote file",
		"uri", s.uri.Redacted(),
		"destination", s.spec.OutputPath(),
		"digest", s.spec.Expected.String(),
		"kind", s.spec.Kind.String(),
		"bytes", size,
		"duration", clock.Since(s.clock, start),
	)
	return nil
}

func (s *Step) ioError(op, path string, err error) *Error {
	return &Error{Kind: KindIO, Op: op, URI: s.uri.Redacted(), Path: path, Err: err}
}
