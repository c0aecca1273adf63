// Package engine drives an execution plan to completion. It executes
// extractors in dependency waves, merges their output into the result
// container, and applies the configured failure policy.
//
// A wave is the maximal set of not-yet-run plan entries whose dependencies
// are all present in the accumulated results. Extractors within a wave are
// independent and may run concurrently via the configured Strategy; waves
// themselves are strictly ordered. Concurrency is purely a performance
// optimization: observable results are identical under every strategy.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/featureset"
	"github.com/quatrope/gofeets/internal/ctxlog"
	"github.com/quatrope/gofeets/schedule"
	"github.com/quatrope/gofeets/timeseries"
)

// Policy selects how the engine reacts to a failing extractor.
type Policy int

const (
	// FailFast aborts the whole run on the first extractor failure and
	// surfaces its error with the extractor's identity attached.
	FailFast Policy = iota

	// CollectErrors records failures, skips extractors that transitively
	// depend on failed output, finishes the remaining independent waves,
	// and returns the partial results together with a Report.
	CollectErrors
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail_fast"
	case CollectErrors:
		return "collect_errors"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// State tracks a run through its lifecycle.
type State int

const (
	Planned State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Planned:
		return "planned"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Failure records one extractor that returned an error.
type Failure struct {
	Extractor string
	Err       error
}

// Skip records one extractor that never ran because an upstream producer of
// the named feature failed.
type Skip struct {
	Extractor string
	Upstream  string
}

// Reason returns the human-readable skip explanation.
func (s Skip) Reason() string {
	return fmt.Sprintf("skipped due to upstream failure of %q", s.Upstream)
}

// Report is the structured account of a run: its identity, terminal state,
// and every failure and skip. An empty Failures/Skips pair means the run was
// clean.
type Report struct {
	RunID    string
	State    State
	Failures []Failure
	Skips    []Skip
}

// OK reports whether the run completed with no failures and no skips.
func (r *Report) OK() bool {
	return r.State == Completed && len(r.Failures) == 0 && len(r.Skips) == 0
}

// Options configures an Engine.
type Options struct {
	// Strategy runs each wave's tasks. Defaults to a worker pool sized to
	// the number of CPUs.
	Strategy Strategy

	// Policy is the failure policy. Defaults to FailFast.
	Policy Policy

	// Params holds per-extractor parameter overrides, keyed by extractor
	// name. Every key must match an extractor in the plan.
	Params map[string]extractor.Parameters
}

// Engine executes one plan. It is reusable across runs with the same plan
// and parameters; each Run call is an independent request.
type Engine struct {
	plan     *schedule.Plan
	runners  []*extractor.Runner
	strategy Strategy
	policy   Policy
}

// New builds an Engine for the given plan, binding every plan entry to its
// parameter overrides up front so configuration errors surface before any
// extraction starts.
func New(plan *schedule.Plan, opts Options) (*Engine, error) {
	strategy := opts.Strategy
	if strategy == nil {
		strategy = NewWorkerPool(runtime.NumCPU())
	}

	entries := plan.Extractors()
	known := make(map[string]bool, len(entries))
	for _, entry := range entries {
		known[entry.Descriptor.Name] = true
	}
	for name := range opts.Params {
		if !known[name] {
			return nil, fmt.Errorf(
				"parameter overrides given for extractor %q, which is not in the plan (%s)",
				name, strings.Join(plan.Names(), ", "),
			)
		}
	}

	runners := make([]*extractor.Runner, len(entries))
	for i, entry := range entries {
		runner, err := extractor.NewRunner(entry.Extractor, opts.Params[entry.Descriptor.Name])
		if err != nil {
			return nil, err
		}
		runners[i] = runner
	}

	return &Engine{
		plan:     plan,
		runners:  runners,
		strategy: strategy,
		policy:   opts.Policy,
	}, nil
}

// Plan returns the plan the engine executes.
func (e *Engine) Plan() *schedule.Plan {
	return e.plan
}

// slot carries one extractor invocation's outcome out of a wave. Each task
// writes only its own slot, so wave members never share mutable state.
type slot struct {
	runner *extractor.Runner
	result map[string]any
	err    error
}

// Run executes the plan against the given data. Under FailFast a failure
// aborts the run and is returned as the error. Under CollectErrors the
// returned FeatureSet is the partial result and the Report accounts for
// every failure and skip. Internal invariant violations (duplicate feature
// merge, scheduling faults) abort the run regardless of policy.
func (e *Engine) Run(ctx context.Context, data timeseries.Data) (*featureset.FeatureSet, *Report, error) {
	report := &Report{RunID: uuid.NewString(), State: Planned}
	logger := ctxlog.FromContext(ctx).With("run_id", report.RunID)
	ctx = ctxlog.WithLogger(ctx, logger)

	if err := data.Validate(); err != nil {
		return nil, nil, err
	}
	if missing := missingChannels(e.plan.RequiredData(), data); len(missing) > 0 {
		return nil, nil, fmt.Errorf(
			"data channels required by the plan are missing: %s", joinChannels(missing),
		)
	}

	report.State = Running
	logger.Debug("Run started.", "extractors", e.plan.Len(), "policy", e.policy.String())

	builder := featureset.NewBuilder()
	pending := append([]*extractor.Runner(nil), e.runners...)
	failedFeatures := make(map[string]string) // feature -> failed upstream feature

	for len(pending) > 0 {
		pending = e.skipUnreachable(ctx, pending, failedFeatures, report)
		if len(pending) == 0 {
			break
		}

		wave, rest := nextWave(pending, builder)
		if len(wave) == 0 {
			report.State = Failed
			return nil, nil, fmt.Errorf(
				"internal invariant violation: no runnable extractors among %d pending (plan is not dependency-ordered)",
				len(rest),
			)
		}

		logger.Debug("Executing wave.", "size", len(wave), "remaining", len(rest))
		slots := e.executeWave(ctx, wave, data, builder.Computed())

		if ctx.Err() != nil {
			// External cancellation: in-flight members were allowed to
			// finish inside the wave, but nothing merges.
			report.State = Failed
			return nil, nil, ctx.Err()
		}

		if err := e.mergeWave(ctx, slots, builder, failedFeatures, report); err != nil {
			report.State = Failed
			return nil, nil, err
		}
		pending = rest
	}

	report.State = Completed
	logger.Debug("Run completed.", "features", len(builder.Computed()), "failures", len(report.Failures), "skips", len(report.Skips))
	return builder.Build(), report, nil
}

// skipUnreachable removes, to a fixpoint, every pending runner that depends
// on a failed or skipped feature, recording each removal in the report.
func (e *Engine) skipUnreachable(ctx context.Context, pending []*extractor.Runner, failedFeatures map[string]string, report *Report) []*extractor.Runner {
	logger := ctxlog.FromContext(ctx)
	for {
		var keep []*extractor.Runner
		skipped := false
		for _, runner := range pending {
			upstream := ""
			for _, dep := range runner.Descriptor().Dependencies {
				if origin, failed := failedFeatures[dep]; failed {
					upstream = origin
					break
				}
			}
			if upstream == "" {
				keep = append(keep, runner)
				continue
			}
			skipped = true
			logger.Warn("Skipping extractor due to upstream failure.",
				"extractor", runner.Descriptor().Name, "upstream", upstream)
			report.Skips = append(report.Skips, Skip{
				Extractor: runner.Descriptor().Name,
				Upstream:  upstream,
			})
			for _, f := range runner.Descriptor().Features {
				failedFeatures[f] = upstream
			}
		}
		pending = keep
		if !skipped {
			return pending
		}
	}
}

// nextWave splits pending into the maximal runnable prefix set (all
// dependencies already computed) and the rest, preserving plan order.
func nextWave(pending []*extractor.Runner, builder *featureset.Builder) (wave, rest []*extractor.Runner) {
	for _, runner := range pending {
		ready := true
		for _, dep := range runner.Descriptor().Dependencies {
			if !builder.Has(dep) {
				ready = false
				break
			}
		}
		if ready {
			wave = append(wave, runner)
		} else {
			rest = append(rest, runner)
		}
	}
	return wave, rest
}

// executeWave runs one wave through the strategy. Under FailFast the first
// failing task cancels the wave context so siblings that honor cancellation
// can bail out early; their results are discarded during the merge.
func (e *Engine) executeWave(ctx context.Context, wave []*extractor.Runner, data timeseries.Data, computed map[string]any) []*slot {
	waveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make([]*slot, len(wave))
	tasks := make([]Task, len(wave))
	for i, runner := range wave {
		s := &slot{runner: runner}
		slots[i] = s
		tasks[i] = func(taskCtx context.Context) {
			s.result, s.err = s.runner.Run(taskCtx, data, computed)
			if s.err != nil && e.policy == FailFast {
				cancel()
			}
		}
	}
	e.strategy.Execute(waveCtx, tasks)
	return slots
}

// mergeWave folds a completed wave into the result container in plan order.
func (e *Engine) mergeWave(ctx context.Context, slots []*slot, builder *featureset.Builder, failedFeatures map[string]string, report *Report) error {
	logger := ctxlog.FromContext(ctx)

	for _, s := range slots {
		desc := s.runner.Descriptor()
		if s.err != nil {
			if extractor.IsFault(s.err) {
				// Scheduling faults are engine bugs, never collected.
				return s.err
			}
			if e.policy == FailFast {
				return fmt.Errorf("extractor %q failed: %w", desc.Name, s.err)
			}
			logger.Error("Extractor failed.", "extractor", desc.Name, "error", s.err)
			report.Failures = append(report.Failures, Failure{Extractor: desc.Name, Err: s.err})
			for _, f := range desc.Features {
				failedFeatures[f] = f
			}
			continue
		}
		for _, f := range desc.Features {
			if err := builder.Add(f, s.result[f], desc.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func missingChannels(required []timeseries.Channel, data timeseries.Data) []timeseries.Channel {
	var out []timeseries.Channel
	for _, c := range required {
		if _, ok := data[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func joinChannels(cs []timeseries.Channel) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
