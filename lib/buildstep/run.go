// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildstep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/remotefile/lib/clock"
)

// StepStatus is the outcome of one step.
type StepStatus string

const (
	StatusOK      StepStatus = "ok"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// StepResult captures the outcome of a single step.
type StepResult struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Err      error
}

// Result is the outcome of a rule's step sequence.
type Result struct {
	// Rule is the label of the rule the steps came from.
	Rule string

	// Steps has one entry per step, in order, including skipped ones.
	Steps []StepResult

	// Err is the first step error, nil on success.
	Err error
}

// ExitCode returns the exit status for the sequence.
func (r Result) ExitCode() int { return ExitCode(r.Err) }

// Rule pairs a label with the steps it expands into.
type Rule struct {
	Label string
	Steps []Step
}

// Runner executes step sequences. The zero value logs nowhere and
// uses the real clock.
type Runner struct {
	Logger *slog.Logger
	Clock  clock.Clock
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func (r *Runner) clock() clock.Clock {
	if r.Clock == nil {
		return clock.Real()
	}
	return r.Clock
}

// RunSequence executes rule's steps in order, stopping at the first
// failure. A context cancelled between steps fails the next step
// without running it.
func (r *Runner) RunSequence(ctx context.Context, rule Rule) Result {
	logger := r.logger().With("rule", rule.Label)
	result := Result{Rule: rule.Label, Steps: make([]StepResult, 0, len(rule.Steps))}

	for index, step := range rule.Steps {
		if result.Err != nil {
			result.Steps = append(result.Steps, StepResult{Name: step.Name(), Status: StatusSkipped})
			continue
		}

		start := r.clock().Now()
		err := ctx.Err()
		if err == nil {
			err = step.Execute(ctx)
		}
		duration := clock.Since(r.clock(), start)

		if err != nil {
			result.Err = fmt.Errorf("%s: step %s: %w", rule.Label, step.Name(), err)
			result.Steps = append(result.Steps, StepResult{Name: step.Name(), Status: StatusFailed, Duration: duration, Err: err})
			logger.Error("step failed",
				"step", step.Name(),
				"index", index+1,
				"total", len(rule.Steps),
				"duration", duration,
				"error", err,
			)
			continue
		}

		result.Steps = append(result.Steps, StepResult{Name: step.Name(), Status: StatusOK, Duration: duration})
		logger.Debug("step ok",
			"step", step.Name(),
			"index", index+1,
			"total", len(rule.Steps),
			"duration", duration,
		)
	}
	return result
}

// RunRules executes independent rules with at most concurrency running
// at once (values below 1 mean 1). Every rule runs to its own
// completion or first failure; one rule failing does not cancel the
// others. Results are returned in the order of rules.
func (r *Runner) RunRules(ctx context.Context, rules []Rule, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]Result, len(rules))

	var group errgroup.Group
	group.SetLimit(concurrency)
	for index, rule := range rules {
		group.Go(func() error {
			results[index] = r.RunSequence(ctx, rule)
			return nil
		})
	}
	group.Wait()
	return results
}

// FirstFailure returns the first failed result in order, or nil.
func FirstFailure(results []Result) *Result {
	for index := range results {
		if results[index].Err != nil {
			return &results[index]
		}
	}
	return nil
}
