package query

import "context"

// QueryDefinition is one benchmarked query pattern: either a single
// filtered lookup against Collection or a multi-hop join chain.
// Definitions are immutable once loaded; every iteration consumes them
// read-only.
type QueryDefinition struct {
	Name       string
	Collection string
	Limit      int
	Filter     Document
	Params     map[string]*ParameterSpec
	Chain      *JoinStep
}

// Validate checks the definition and all its parameter specs before any
// iteration runs. Failures are config-class and abort this definition
// only.
func (d *QueryDefinition) Validate() error {
	if d.Name == "" {
		return configErrorf("query definition has no name")
	}
	if d.Chain == nil && d.Collection == "" {
		return configErrorf("definition %s has neither a collection nor a join chain", d.Name)
	}
	for name, spec := range d.Params {
		if err := spec.Validate(); err != nil {
			return configErrorf("definition %s parameter %s: %v", d.Name, name, err)
		}
	}
	if err := CheckPlaceholders(d.Filter, d.Params); err != nil {
		return configErrorf("definition %s: %v", d.Name, err)
	}
	for step := d.Chain; step != nil; step = step.Next {
		if step.Collection == "" {
			return configErrorf("definition %s has a join step without a collection", d.Name)
		}
		if step.Next != nil && step.LocalField == "" {
			return configErrorf("definition %s: join step on %s has a next hop but no local field", d.Name, step.Collection)
		}
		if err := CheckPlaceholders(step.Filter, d.Params); err != nil {
			return configErrorf("definition %s: join step on %s: %v", d.Name, step.Collection, err)
		}
	}
	return nil
}

// Execute runs one end-to-end iteration of the definition with freshly
// generated parameters: a new correlation scope, template resolution
// and either a single lookup or the full join chain. The returned
// records are the final answer set.
func (d *QueryDefinition) Execute(ctx context.Context, c Collaborator, gen *Generator) ([]Document, error) {
	scope := NewCorrelationScope()
	if d.Chain != nil {
		return RunChain(ctx, c, d.Chain, d.Params, gen, scope)
	}
	filter, err := ResolveTemplate(d.Filter, d.Params, gen, scope)
	if err != nil {
		return nil, err
	}
	records, err := c.Find(ctx, d.Collection, filter, d.Limit)
	if err != nil {
		return nil, wrapDataAccess("Find", d.Collection, err)
	}
	return records, nil
}
