package query

import (
	"math/rand"
	"strconv"
	"sync/atomic"
)

// ParamKind selects one arm of the ParameterSpec union.
type ParamKind string

const (
	ParamFixed           ParamKind = "fixed"
	ParamRandomRange     ParamKind = "random_range"
	ParamRandomChoice    ParamKind = "random_choice"
	ParamSequential      ParamKind = "sequential"
	ParamSampleFromStore ParamKind = "sample_from_store"
)

// ParameterSpec describes how one named query parameter is produced.
// Specs are built once at configuration load and are read-only during
// benchmarking, except for the sequential counter which advances
// atomically across all generation calls for the whole run.
type ParameterSpec struct {
	Kind ParamKind

	// fixed
	Value Value

	// random_range and sequential, inclusive bounds. ValueType is
	// "int" (default) or "string" for numeric-string parameters.
	Min       int64
	Max       int64
	ValueType string

	// random_choice
	Choices []Value

	// sample_from_store
	Collection       string
	Field            string
	CorrelationGroup string

	seq atomic.Int64
}

// Validate checks the spec arm is usable before any iteration runs.
func (s *ParameterSpec) Validate() error {
	switch s.Kind {
	case ParamFixed:
		if s.Value == nil {
			return configErrorf("fixed parameter has no value")
		}
	case ParamRandomRange, ParamSequential:
		if s.Max < s.Min {
			return configErrorf("%s parameter has max %d < min %d", s.Kind, s.Max, s.Min)
		}
	case ParamRandomChoice:
		if len(s.Choices) == 0 {
			return configErrorf("random_choice parameter has an empty choice list")
		}
	case ParamSampleFromStore:
		if s.Collection == "" || s.Field == "" {
			return configErrorf("sample_from_store parameter needs collection and field")
		}
	default:
		return configErrorf("unknown parameter kind %q", s.Kind)
	}
	return nil
}

// CorrelationScope binds correlation-group tags to one concretely
// sampled record for the duration of a single top-level generation
// call. Callers create a fresh scope per iteration; nothing survives
// across calls.
type CorrelationScope map[string]Document

// NewCorrelationScope returns an empty per-call scope.
func NewCorrelationScope() CorrelationScope {
	return make(CorrelationScope)
}

// Generator resolves parameter specs into concrete values. A single
// Generator is shared by all benchmark workers; it owns no mutable
// state beyond the pool set (read-only after load) and each spec's
// atomic sequential counter.
type Generator struct {
	pools *PoolSet
}

// NewGenerator builds a generator over loaded value pools. pools may be
// nil when no definition samples from the store.
func NewGenerator(pools *PoolSet) *Generator {
	return &Generator{pools: pools}
}

// Generate resolves spec to a concrete value. Sample-from-store specs
// honour the correlation scope: a tag already bound in scope reuses the
// bound record, otherwise a fresh record is sampled and, if tagged,
// bound for sibling parameters in the same call.
func (g *Generator) Generate(spec *ParameterSpec, scope CorrelationScope) (Value, error) {
	switch spec.Kind {
	case ParamFixed:
		if spec.Value == nil {
			return nil, configErrorf("fixed parameter has no value")
		}
		return spec.Value, nil

	case ParamRandomRange:
		if spec.Max < spec.Min {
			return nil, configErrorf("random_range has max %d < min %d", spec.Max, spec.Min)
		}
		return spec.number(spec.Min + rand.Int63n(spec.Max-spec.Min+1)), nil

	case ParamRandomChoice:
		if len(spec.Choices) == 0 {
			return nil, configErrorf("random_choice has an empty choice list")
		}
		return spec.Choices[rand.Intn(len(spec.Choices))], nil

	case ParamSequential:
		if spec.Max < spec.Min {
			return nil, configErrorf("sequential has max %d < min %d", spec.Max, spec.Min)
		}
		n := spec.seq.Add(1) - 1
		return spec.number(spec.Min + n%(spec.Max-spec.Min+1)), nil

	case ParamSampleFromStore:
		return g.sample(spec, scope)

	default:
		return nil, configErrorf("unknown parameter kind %q", spec.Kind)
	}
}

// number renders n according to the spec's declared value type.
func (s *ParameterSpec) number(n int64) Value {
	if s.ValueType == "string" {
		return strconv.FormatInt(n, 10)
	}
	return n
}

func (g *Generator) sample(spec *ParameterSpec, scope CorrelationScope) (Value, error) {
	if g.pools == nil {
		return nil, &NotConfiguredError{Collection: spec.Collection, Field: spec.Field}
	}

	if spec.CorrelationGroup != "" {
		rec, bound := scope[spec.CorrelationGroup]
		if !bound {
			var err error
			rec, err = g.pools.SampleRecord(spec.Collection)
			if err != nil {
				return nil, err
			}
			scope[spec.CorrelationGroup] = rec
		}
		return extractField(rec, spec)
	}

	// Untagged: a plain field pool is enough, fall back to records
	// when only those were loaded.
	if v, ok := g.pools.SampleValue(spec.Collection, spec.Field); ok {
		return v, nil
	}
	rec, err := g.pools.SampleRecord(spec.Collection)
	if err != nil {
		return nil, err
	}
	return extractField(rec, spec)
}

func extractField(rec Document, spec *ParameterSpec) (Value, error) {
	v, ok := ExtractPath(rec, spec.Field)
	if !ok || v == nil {
		return nil, &MissingFieldError{Collection: spec.Collection, Field: spec.Field}
	}
	return v, nil
}
