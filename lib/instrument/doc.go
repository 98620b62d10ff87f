// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package instrument holds remotefile's metrics and tracing setup.
//
// [Metrics] is a Prometheus collector set on a private registry that
// implements the fetch step's Observer interface. A build is a short
// process, so metrics are not served over HTTP: [Metrics.WriteTextfile]
// dumps them in text exposition format for node_exporter's textfile
// collector at the end of a run.
//
// [NewProvider] builds an OpenTelemetry tracer provider from
// [TracingConfig]. When tracing is disabled it returns a no-op tracer.
package instrument
