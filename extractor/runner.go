package extractor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/quatrope/gofeets/internal/ctxlog"
	"github.com/quatrope/gofeets/timeseries"
)

// ContractError reports an extractor whose runtime output did not match its
// declared feature set.
type ContractError struct {
	Extractor string
	Expected  []string
	Actual    []string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf(
		"extractor %q broke its contract: expected features [%s], returned [%s]",
		e.Extractor,
		strings.Join(e.Expected, ", "),
		strings.Join(e.Actual, ", "),
	)
}

// Runner wraps one extractor bound to its resolved parameters. It assembles
// the extractor's inputs from raw data and already-computed features, invokes
// it, and validates the returned feature set against the declared one.
type Runner struct {
	desc   *Descriptor
	impl   Extractor
	params Parameters
}

// NewRunner validates e and binds it to its defaults merged with overrides.
// Overriding a parameter the extractor does not declare is an error.
func NewRunner(e Extractor, overrides Parameters) (*Runner, error) {
	desc, err := Describe(e)
	if err != nil {
		return nil, err
	}

	params := desc.Defaults.clone()
	for name, value := range overrides {
		if _, known := params[name]; !known {
			return nil, fmt.Errorf(
				"extractor %q has no parameter %q (available: %s)",
				desc.Name, name, strings.Join(sortedKeys(params), ", "),
			)
		}
		params[name] = value
	}

	return &Runner{desc: desc, impl: e, params: params}, nil
}

// Descriptor returns the validated metadata of the wrapped extractor.
func (r *Runner) Descriptor() *Descriptor {
	return r.desc
}

// Params returns the merged parameter set the extractor is bound to.
func (r *Runner) Params() Parameters {
	return r.params.clone()
}

// Run performs one contract-validated extraction. computed must hold every
// declared dependency and data every declared channel; a miss is an internal
// scheduling fault (the planner admitted this extractor too early), not a
// user error.
func (r *Runner) Run(ctx context.Context, data timeseries.Data, computed map[string]any) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("extractor", r.desc.Name)

	in := Input{
		Data:     make(map[timeseries.Channel][]float64, len(r.desc.Data)),
		Features: make(map[string]any, len(r.desc.Dependencies)),
		Params:   r.params,
	}
	for _, c := range r.desc.Data {
		series, ok := data[c]
		if !ok {
			return nil, &fault{Extractor: r.desc.Name, Kind: "channel", Missing: string(c)}
		}
		in.Data[c] = series
	}
	for _, dep := range r.desc.Dependencies {
		value, ok := computed[dep]
		if !ok {
			return nil, &fault{Extractor: r.desc.Name, Kind: "feature", Missing: dep}
		}
		in.Features[dep] = value
	}

	logger.Debug("Invoking extractor.")
	result, err := r.impl.Extract(ctx, in)
	if err != nil {
		return nil, err
	}

	// A nil return counts as an empty mapping, so any non-empty declared
	// feature set fails the contract check below.
	if result == nil {
		result = map[string]any{}
	}

	if err := r.validate(result); err != nil {
		return nil, err
	}
	logger.Debug("Extractor finished.", "features", len(result))
	return result, nil
}

// validate fails when the symmetric difference between declared and returned
// feature sets is non-empty.
func (r *Runner) validate(result map[string]any) error {
	ok := len(result) == len(r.desc.Features)
	if ok {
		for _, f := range r.desc.Features {
			if _, present := result[f]; !present {
				ok = false
				break
			}
		}
	}
	if ok {
		return nil
	}

	actual := make([]string, 0, len(result))
	for f := range result {
		actual = append(actual, f)
	}
	sort.Strings(actual)
	expected := append([]string(nil), r.desc.Features...)
	sort.Strings(expected)
	return &ContractError{Extractor: r.desc.Name, Expected: expected, Actual: actual}
}
