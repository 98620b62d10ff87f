// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/remotefile/lib/artifactcache"
	"github.com/bureau-foundation/remotefile/lib/buildstep"
	"github.com/bureau-foundation/remotefile/lib/config"
	"github.com/bureau-foundation/remotefile/lib/fetch"
	"github.com/bureau-foundation/remotefile/lib/instrument"
	"github.com/bureau-foundation/remotefile/lib/manifest"
	"github.com/bureau-foundation/remotefile/lib/remotefile"
)

// ledgerFile is where the artifact ledger is saved, relative to the
// output root.
var ledgerFile = filepath.Join(remotefile.StateDirectory, "artifacts.cbor")

func runFetch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var configPath, outputRoot string
	var concurrency int
	var noCache bool

	flagSet := pflag.NewFlagSet("remotefile fetch", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "path to remotefile.yaml (default: $"+config.EnvironmentVariable+", or built-in defaults)")
	flagSet.StringVar(&outputRoot, "output-root", "", "directory outputs are published under (overrides output_root)")
	flagSet.IntVar(&concurrency, "concurrency", 0, "rules fetched at once (overrides concurrency)")
	flagSet.BoolVar(&noCache, "no-cache", false, "bypass the download cache")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		return errors.New("fetch: exactly one manifest path is required")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if outputRoot != "" {
		cfg.OutputRoot = outputRoot
	}
	if concurrency != 0 {
		cfg.Concurrency = concurrency
	}
	if noCache {
		cfg.Cache.Dir = ""
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := cfg.LogLevel()
	logger := newLogger(cfg.Log, level, stderr)

	loaded, err := manifest.Load(flagSet.Arg(0))
	if err != nil {
		return err
	}
	rules, err := loaded.Rules()
	if err != nil {
		return err
	}

	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	tracing, err := instrument.NewProvider(instrument.TracingConfig{
		Enabled:  cfg.Tracing.Enabled,
		Exporter: cfg.Tracing.Exporter,
		Writer:   stderr,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn("flushing traces failed", "error", err)
		}
	}()

	metrics := instrument.NewMetrics()

	timeout, _ := cfg.HTTPTimeout()
	origin := fetch.NewMux(&fetch.HTTP{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: cfg.HTTP.UserAgent,
		MaxBytes:  cfg.HTTP.MaxBytes,
		Logger:    logger,
	})

	var store *artifactcache.Store
	if cfg.Cache.Dir != "" {
		compression, err := artifactcache.ParseCompressionTag(cfg.Cache.Compression)
		if err != nil {
			return err
		}
		store, err = artifactcache.OpenStore(cfg.Cache.Dir, compression, logger)
		if err != nil {
			return err
		}
	}

	ledger := artifactcache.NewLedger()
	planned := make([]buildstep.Rule, 0, len(rules))
	for _, rule := range rules {
		var fetcher fetch.Fetcher = origin
		if store != nil {
			fetcher = store.ReadThrough(rule.Spec.Expected, origin, metrics.ObserveCacheLookup)
		}
		built, err := rule.BuildRule(cfg.OutputRoot, fetcher, ledger,
			remotefile.WithLogger(logger.With("target", rule.Target)),
			remotefile.WithTracer(tracing.Tracer()),
			remotefile.WithObserver(metrics),
		)
		if err != nil {
			return err
		}
		if store != nil {
			built.Steps = append(built.Steps, cachePutStep(store, rule, cfg.OutputRoot, logger))
		}
		planned = append(planned, built)
	}

	logger.Info("fetching remote files",
		"manifest", flagSet.Arg(0),
		"rules", len(planned),
		"output_root", cfg.OutputRoot,
		"concurrency", cfg.Concurrency,
		"cache", cfg.Cache.Dir,
	)
	runner := &buildstep.Runner{Logger: logger}
	results := runner.RunRules(ctx, planned, cfg.Concurrency)

	for _, result := range results {
		status := "ok"
		if result.Err != nil {
			status = "FAILED"
		}
		fmt.Fprintf(stdout, "%-6s %s\n", status, result.Rule)
	}

	if err := ledger.Save(filepath.Join(cfg.OutputRoot, ledgerFile)); err != nil {
		return err
	}
	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("writing metrics textfile failed", "error", err)
		}
	}

	if failed := buildstep.FirstFailure(results); failed != nil {
		return failed.Err
	}
	return nil
}

// loadConfig loads the file named by --config, then $REMOTEFILE_CONFIG,
// and falls back to the built-in defaults when neither is set.
func loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv(config.EnvironmentVariable) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

// cachePutStep stores the freshly published file in the download
// cache. Cache failures are logged, never fatal: the artifact is
// already published and recorded.
func cachePutStep(store *artifactcache.Store, rule remotefile.Rule, outputRoot string, logger *slog.Logger) buildstep.Step {
	return buildstep.Func{
		Label: "cache_put",
		Run: func(ctx context.Context) error {
			if store.Has(rule.Spec.Expected) {
				return nil
			}
			published := filepath.Join(outputRoot, rule.Spec.OutputPath())
			if err := store.Put(rule.Spec.Expected, published); err != nil {
				logger.Warn("caching remote file failed", "target", rule.Target, "error", err)
			}
			return nil
		},
	}
}
