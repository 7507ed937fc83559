package query

import (
	"context"
	"fmt"
)

// JoinStep is one hop of an emulated multi-collection join: a filtered
// lookup against Collection whose results feed the next hop. LocalField
// is the dot-path extracted from each matched record to produce the
// outbound linking keys; ForeignField is the dot-path constrained by
// the inbound keys from the previous hop. Chains are singly linked,
// built once by the configuration loader and never mutated, so no
// cycles can form.
type JoinStep struct {
	Collection   string
	LocalField   string
	ForeignField string
	Filter       Document
	Limit        int
	Next         *JoinStep
}

// ExecuteStep runs one join hop: resolve the step's filter template,
// AND it with {ForeignField: {$in: inboundKeys}} when inbound keys
// exist (the first hop has none), delegate the lookup to the
// collaborator, and extract the deduplicated outbound linking keys from
// the matched records. The lookup itself is the only I/O; everything
// else is filter construction and result post-processing.
func ExecuteStep(ctx context.Context, c Collaborator, step *JoinStep, inbound []Value, specs map[string]*ParameterSpec, gen *Generator, scope CorrelationScope) ([]Value, []Document, error) {
	filter := Document{}
	if step.Filter != nil {
		resolved, err := ResolveTemplate(step.Filter, specs, gen, scope)
		if err != nil {
			return nil, nil, err
		}
		filter = resolved
	}
	if len(inbound) > 0 {
		if step.ForeignField == "" {
			return nil, nil, configErrorf("join step on %s receives keys but has no foreign field", step.Collection)
		}
		filter[step.ForeignField] = Document{"$in": inbound}
	}

	records, err := c.Find(ctx, step.Collection, filter, step.Limit)
	if err != nil {
		return nil, nil, wrapDataAccess("Find", step.Collection, err)
	}

	// The final hop's records are the answer set; its linking keys are
	// never consumed, so a chain may leave LocalField empty there.
	if step.LocalField == "" {
		return nil, records, nil
	}

	keys := make([]Value, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		for _, v := range ExtractAll(rec, step.LocalField) {
			// Linking values are scalars (ids, numbers, strings).
			// Keying on type plus text keeps int64(1) and "1" distinct.
			k := fmt.Sprintf("%T|%v", v, v)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, v)
		}
	}
	return keys, records, nil
}

// RunChain walks a join chain from head, threading each hop's outbound
// keys into the next hop's inbound constraint. An intermediate hop that
// yields no keys terminates the chain immediately with an empty result:
// that is a legitimate no-match outcome, never retried and never an
// error. The final hop's matched records are the answer.
func RunChain(ctx context.Context, c Collaborator, head *JoinStep, specs map[string]*ParameterSpec, gen *Generator, scope CorrelationScope) ([]Document, error) {
	var inbound []Value
	for step := head; step != nil; step = step.Next {
		keys, records, err := ExecuteStep(ctx, c, step, inbound, specs, gen, scope)
		if err != nil {
			return nil, err
		}
		if step.Next == nil {
			return records, nil
		}
		if len(keys) == 0 {
			return nil, nil
		}
		inbound = keys
	}
	return nil, nil
}
