// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package instrument

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for one remotefile run.
type Metrics struct {
	FetchesTotal      *prometheus.CounterVec
	FetchedBytesTotal prometheus.Counter
	FetchDuration     *prometheus.HistogramVec
	CacheLookupsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates the metrics on a fresh registry, so independent
// runs (and tests) never share counters.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remotefile_fetches_total",
				Help: "Remote file step executions by outcome",
			},
			[]string{"outcome"},
		),

		FetchedBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "remotefile_fetched_bytes_total",
				Help: "Bytes published by successful remote file steps",
			},
		),

		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remotefile_fetch_duration_seconds",
				Help:    "Remote file step duration distribution",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"outcome"},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remotefile_cache_lookups_total",
				Help: "Download cache lookups by result",
			},
			[]string{"result"},
		),

		registry: registry,
	}
}

// ObserveFetch records one step execution. It satisfies
// remotefile.Observer.
func (m *Metrics) ObserveFetch(outcome string, bytes int64, duration time.Duration) {
	m.FetchesTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if bytes > 0 {
		m.FetchedBytesTotal.Add(float64(bytes))
	}
}

// ObserveCacheLookup records a download cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every metric to path in Prometheus text format.
// The file is replaced atomically, so a collector never reads a
// partial file.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
