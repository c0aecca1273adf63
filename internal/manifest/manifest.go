// Package manifest loads extraction request files written in HCL. A request
// names the observation data, narrows the feature selection, and overrides
// extractor parameters:
//
//	extract {
//	  data     = "curve.csv"
//	  only     = ["Mean", "Std", "Con"]
//	  workers  = 4
//	  on_error = "collect"
//
//	  params "Con" {
//	    consecutive = 4
//	  }
//	}
package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/quatrope/gofeets/extractor"
	"github.com/quatrope/gofeets/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Manifest is a decoded extraction request.
type Manifest struct {
	// Data is the path of the CSV observation file, relative to the
	// manifest's own directory unless absolute.
	Data string

	Only    []string
	Exclude []string

	// Workers is the concurrent execution width. Zero means sequential.
	Workers int

	// OnError is "fail" (default) or "collect".
	OnError string

	// Params maps extractor names to parameter overrides.
	Params map[string]extractor.Parameters
}

type fileRoot struct {
	Extract *extractBlock `hcl:"extract,block"`
}

type extractBlock struct {
	Data    string        `hcl:"data"`
	Only    []string      `hcl:"only,optional"`
	Exclude []string      `hcl:"exclude,optional"`
	Workers int           `hcl:"workers,optional"`
	OnError string        `hcl:"on_error,optional"`
	Params  []paramsBlock `hcl:"params,block"`
}

type paramsBlock struct {
	Extractor string   `hcl:"extractor,label"`
	Remain    hcl.Body `hcl:",remain"`
}

// Load parses and decodes the manifest at path.
func Load(ctx context.Context, path string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading extraction manifest.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("manifest: parsing %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("manifest: decoding %s: %w", path, diags)
	}
	if root.Extract == nil {
		return nil, fmt.Errorf("manifest: %s has no extract block", path)
	}

	m := &Manifest{
		Data:    root.Extract.Data,
		Only:    root.Extract.Only,
		Exclude: root.Extract.Exclude,
		Workers: root.Extract.Workers,
		OnError: root.Extract.OnError,
		Params:  make(map[string]extractor.Parameters),
	}
	switch m.OnError {
	case "", "fail", "collect":
	default:
		return nil, fmt.Errorf("manifest: on_error must be \"fail\" or \"collect\", got %q", m.OnError)
	}
	if m.Workers < 0 {
		return nil, fmt.Errorf("manifest: workers must not be negative, got %d", m.Workers)
	}

	for _, block := range root.Extract.Params {
		if _, ok := m.Params[block.Extractor]; ok {
			return nil, fmt.Errorf("manifest: duplicate params block for %q", block.Extractor)
		}
		params, err := decodeParams(block.Remain)
		if err != nil {
			return nil, fmt.Errorf("manifest: params %q: %w", block.Extractor, err)
		}
		m.Params[block.Extractor] = params
	}

	logger.Debug("Manifest loaded.", "data", m.Data, "param_overrides", len(m.Params))
	return m, nil
}

// decodeParams evaluates every attribute of a params block into a plain Go
// value. Parameter names are extractor-specific, so the block has no fixed
// schema.
func decodeParams(body hcl.Body) (extractor.Parameters, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	params := make(extractor.Parameters, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating %q: %w", name, diags)
		}
		goVal, err := ctyValueToInterface(val)
		if err != nil {
			return nil, fmt.Errorf("converting %q: %w", name, err)
		}
		params[name] = goVal
	}
	return params, nil
}

// ctyValueToInterface converts a cty.Value to a Go interface{}.
func ctyValueToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	if val.Type().IsPrimitiveType() {
		switch val.Type() {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", val.Type().FriendlyName())
		}
	}
	if val.Type().IsTupleType() || val.Type().IsListType() {
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			elem, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", val.Type().FriendlyName())
}
