// Package config loads the benchmark workload file: query definitions,
// parameter specs and join chains.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"docbench/query"
)

// File is the top-level workload document.
type File struct {
	Queries []QueryConfig `yaml:"queries"`
}

// QueryConfig is one benchmarked query pattern as written in YAML.
type QueryConfig struct {
	Name       string                 `yaml:"name"`
	Collection string                 `yaml:"collection"`
	Limit      int                    `yaml:"limit"`
	Filter     map[string]interface{} `yaml:"filter"`
	Params     map[string]ParamConfig `yaml:"params"`
	Chain      []StepConfig           `yaml:"chain"`
}

// ParamConfig is one parameter spec as written in YAML.
type ParamConfig struct {
	Kind             string        `yaml:"kind"`
	Value            interface{}   `yaml:"value"`
	Min              int64         `yaml:"min"`
	Max              int64         `yaml:"max"`
	Type             string        `yaml:"type"`
	Choices          []interface{} `yaml:"choices"`
	Collection       string        `yaml:"collection"`
	Field            string        `yaml:"field"`
	CorrelationGroup string        `yaml:"correlation_group"`
}

// StepConfig is one join hop as written in YAML. The loader links the
// flat list into the executable chain.
type StepConfig struct {
	Collection   string                 `yaml:"collection"`
	LocalField   string                 `yaml:"local_field"`
	ForeignField string                 `yaml:"foreign_field"`
	Filter       map[string]interface{} `yaml:"filter"`
	Limit        int                    `yaml:"limit"`
}

// Load reads and parses a workload file into query definitions.
func Load(path string) ([]*query.QueryDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read workload file")
	}
	return Parse(raw)
}

// Parse builds definitions from workload YAML.
func Parse(raw []byte) ([]*query.QueryDefinition, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(err, "parse workload file")
	}
	if len(f.Queries) == 0 {
		return nil, errors.New("workload file defines no queries")
	}

	defs := make([]*query.QueryDefinition, 0, len(f.Queries))
	for _, qc := range f.Queries {
		def := &query.QueryDefinition{
			Name:       qc.Name,
			Collection: qc.Collection,
			Limit:      qc.Limit,
			Filter:     normalizeMap(qc.Filter),
			Params:     buildParams(qc.Params),
			Chain:      buildChain(qc.Chain),
		}
		if err := def.Validate(); err != nil {
			return nil, errors.Wrapf(err, "query %q", qc.Name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func buildParams(in map[string]ParamConfig) map[string]*query.ParameterSpec {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]*query.ParameterSpec, len(in))
	for name, pc := range in {
		out[name] = &query.ParameterSpec{
			Kind:             query.ParamKind(pc.Kind),
			Value:            normalizeValue(pc.Value),
			Min:              pc.Min,
			Max:              pc.Max,
			ValueType:        pc.Type,
			Choices:          normalizeList(pc.Choices),
			Collection:       pc.Collection,
			Field:            pc.Field,
			CorrelationGroup: pc.CorrelationGroup,
		}
	}
	return out
}

// buildChain links the YAML step list back-to-front into the singly
// linked chain the orchestrator walks.
func buildChain(steps []StepConfig) *query.JoinStep {
	var next *query.JoinStep
	for i := len(steps) - 1; i >= 0; i-- {
		sc := steps[i]
		next = &query.JoinStep{
			Collection:   sc.Collection,
			LocalField:   sc.LocalField,
			ForeignField: sc.ForeignField,
			Filter:       normalizeMap(sc.Filter),
			Limit:        sc.Limit,
			Next:         next,
		}
	}
	return next
}

// yaml.v2 decodes nested mappings as map[interface{}]interface{}; the
// engine traverses map[string]interface{} only, so rebuild the tree.
func normalizeValue(v interface{}) interface{} {
	switch n := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(n))
		for k, val := range n {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = normalizeValue(val)
		}
		return out
	case map[string]interface{}:
		return normalizeMap(n)
	case []interface{}:
		return normalizeList(n)
	default:
		return v
	}
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeList(l []interface{}) []interface{} {
	if l == nil {
		return nil
	}
	out := make([]interface{}, len(l))
	for i, v := range l {
		out[i] = normalizeValue(v)
	}
	return out
}
