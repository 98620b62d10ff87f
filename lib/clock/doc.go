// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that measures durations accepts a Clock instead of calling
// time.Now directly. Production wires Real(); tests wire Fake() and
// either Advance it explicitly or let AutoAdvance move it on each
// read:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	c.AutoAdvance(250 * time.Millisecond)
//	step := remotefile.NewStep(spec, root, fetcher, recorder, remotefile.WithClock(c))
package clock
