// Package gofeets computes named numeric features from light-curve time
// series by orchestrating a collection of independently authored extractors.
//
// The heavy lifting lives in the subpackages: registry (feature→extractor
// mapping), schedule (dependency resolution and planning), engine (wave
// execution) and extractors (the built-in feature library). This package
// ties them together behind FeatureSpace, the request-level API:
//
//	reg := gofeets.NewRegistry()
//	fs, err := gofeets.New(reg, gofeets.Options{
//		Data: []timeseries.Channel{timeseries.Time, timeseries.Magnitude},
//		Only: []string{"Mean", "Std", "MaxSlope"},
//	})
//	if err != nil { ... }
//	result, report, err := fs.Extract(ctx, data)
package gofeets

import (
	"context"

	"github.com/quatrope/gofeets/engine"
	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/extractors"
	"github.com/quatrope/gofeets/featureset"
	"github.com/quatrope/gofeets/registry"
	"github.com/quatrope/gofeets/schedule"
	"github.com/quatrope/gofeets/timeseries"
)

// Options selects the features a FeatureSpace produces and how it runs.
type Options struct {
	// Data lists the channels the caller will provide. Nil means the full
	// channel enumeration.
	Data []timeseries.Channel

	// Only restricts the features that must ultimately be produced. Nil
	// means every feature reachable from the available data.
	Only []string

	// Exclude names features to omit. An excluded feature's producer still
	// runs when a non-excluded feature depends on it.
	Exclude []string

	// Params holds per-extractor parameter overrides keyed by extractor
	// name.
	Params map[string]extractor.Parameters

	// Policy is the failure policy, FailFast by default.
	Policy engine.Policy

	// Strategy controls wave concurrency; defaults to a CPU-sized worker
	// pool.
	Strategy engine.Strategy
}

// FeatureSpace binds a registry snapshot, an execution plan and an engine
// into one reusable extraction request. The plan is computed once at
// construction; registry mutations afterwards never affect it.
type FeatureSpace struct {
	plan *schedule.Plan
	eng  *engine.Engine
}

// New plans and prepares a FeatureSpace against the current registry state.
// All configuration errors (unknown features, contradictory filters,
// unresolvable dependencies, bad parameter names) surface here, before any
// data is touched.
func New(reg *registry.Registry, opts Options) (*FeatureSpace, error) {
	data := opts.Data
	if data == nil {
		data = timeseries.Channels()
	}

	plan, err := schedule.New(reg, data, opts.Only, opts.Exclude)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(plan, engine.Options{
		Strategy: opts.Strategy,
		Policy:   opts.Policy,
		Params:   opts.Params,
	})
	if err != nil {
		return nil, err
	}

	return &FeatureSpace{plan: plan, eng: eng}, nil
}

// Plan returns the execution plan the space will run.
func (fs *FeatureSpace) Plan() *schedule.Plan {
	return fs.plan
}

// Features returns the feature names the space produces, in execution order.
func (fs *FeatureSpace) Features() []string {
	return fs.plan.Features()
}

// Extract runs the plan against the given data. See engine.Engine.Run for
// the failure policy semantics of the three return values.
func (fs *FeatureSpace) Extract(ctx context.Context, data timeseries.Data) (*featureset.FeatureSet, *engine.Report, error) {
	return fs.eng.Run(ctx, data)
}

// NewRegistry returns a fresh registry with the built-in extractor library
// registered. Callers needing a custom set should build their own registry
// and register extractors directly.
func NewRegistry() *registry.Registry {
	reg := registry.New()
	extractors.RegisterAll(reg)
	return reg
}
