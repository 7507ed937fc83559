package query

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_RandomRangeBounds validates that random_range generation
// stays within [min, max] inclusive for any valid bounds.
func TestProperty_RandomRangeBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	generator := NewGenerator(nil)

	properties.Property("generated value stays within inclusive bounds", prop.ForAll(
		func(a, b int64) bool {
			if a > b {
				a, b = b, a
			}
			spec := &ParameterSpec{Kind: ParamRandomRange, Min: a, Max: b}
			v, err := generator.Generate(spec, NewCorrelationScope())
			if err != nil {
				return false
			}
			n, ok := v.(int64)
			return ok && n >= a && n <= b
		},
		gen.Int64Range(-1_000_000, 1_000_000),
		gen.Int64Range(-1_000_000, 1_000_000),
	))

	properties.Property("sequential sweep never leaves the range", prop.ForAll(
		func(min int64, span int64, calls int) bool {
			max := min + span
			spec := &ParameterSpec{Kind: ParamSequential, Min: min, Max: max}
			for i := 0; i < calls; i++ {
				v, err := generator.Generate(spec, NewCorrelationScope())
				if err != nil {
					return false
				}
				n := v.(int64)
				if n < min || n > max {
					return false
				}
			}
			return true
		},
		gen.Int64Range(-1000, 1000),
		gen.Int64Range(0, 50),
		gen.IntRange(1, 200),
	))

	properties.TestingRun(t)
}
