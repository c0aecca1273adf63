package extractor

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/quatrope/gofeets/timeseries"
)

// Descriptor is the validated static metadata of one extractor: what it
// produces, what raw channels it reads, which features it depends on, and
// its configurable parameters.
type Descriptor struct {
	Name         string
	Features     []string
	Data         []timeseries.Channel
	Dependencies []string
	Defaults     Parameters
}

// Produces reports whether the descriptor declares the given feature.
func (d *Descriptor) Produces(feature string) bool {
	for _, f := range d.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// RequiresData reports whether required is a subset of available.
func (d *Descriptor) RequiresData(available []timeseries.Channel) bool {
	have := make(map[timeseries.Channel]struct{}, len(available))
	for _, c := range available {
		have[c] = struct{}{}
	}
	for _, c := range d.Data {
		if _, ok := have[c]; !ok {
			return false
		}
	}
	return true
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s[%s]", d.Name, strings.Join(d.Features, ", "))
}

// BadDefinitionError reports an extractor whose declared metadata violates
// the authoring contract.
type BadDefinitionError struct {
	Extractor string
	Reason    string
}

func (e *BadDefinitionError) Error() string {
	return fmt.Sprintf("extractor %q is badly defined: %s", e.Extractor, e.Reason)
}

// Describe builds and validates the Descriptor of e. It fails when e is nil,
// declares no features, declares duplicate features, shadows a channel name,
// requires an unknown channel, or depends on a feature it produces itself.
func Describe(e Extractor) (*Descriptor, error) {
	if e == nil {
		return nil, &BadDefinitionError{Extractor: "<nil>", Reason: "nil extractor"}
	}

	name := typeName(e)
	features := e.Features()
	if len(features) == 0 {
		return nil, &BadDefinitionError{Extractor: name, Reason: "declares no features"}
	}

	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if f == "" {
			return nil, &BadDefinitionError{Extractor: name, Reason: "declares an empty feature name"}
		}
		if timeseries.IsChannelName(f) {
			return nil, &BadDefinitionError{
				Extractor: name,
				Reason:    fmt.Sprintf("feature %q collides with a data channel name", f),
			}
		}
		if _, dup := seen[f]; dup {
			return nil, &BadDefinitionError{
				Extractor: name,
				Reason:    fmt.Sprintf("duplicated feature %q", f),
			}
		}
		seen[f] = struct{}{}
	}

	data := e.Data()
	if err := timeseries.ValidateChannels(data); err != nil {
		return nil, &BadDefinitionError{Extractor: name, Reason: err.Error()}
	}

	deps := e.Dependencies()
	for _, dep := range deps {
		if _, own := seen[dep]; own {
			return nil, &BadDefinitionError{
				Extractor: name,
				Reason:    fmt.Sprintf("depends on its own feature %q", dep),
			}
		}
		if timeseries.IsChannelName(dep) {
			return nil, &BadDefinitionError{
				Extractor: name,
				Reason:    fmt.Sprintf("dependency %q is a data channel, declare it via Data()", dep),
			}
		}
	}

	return &Descriptor{
		Name:         name,
		Features:     append([]string(nil), features...),
		Data:         append([]timeseries.Channel(nil), data...),
		Dependencies: append([]string(nil), deps...),
		Defaults:     e.Defaults().clone(),
	}, nil
}

// typeName derives a stable extractor identity from its Go type.
func typeName(e Extractor) string {
	t := reflect.TypeOf(e)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// sortedKeys returns map keys in lexical order, for deterministic error text.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
