package query

import (
	"context"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ValuePool holds the sampled values observed for one (collection,
// field) pair. Loaded once before benchmarking and read-only afterwards,
// so concurrent workers share it without locking.
type ValuePool struct {
	Collection string
	Field      string
	Values     []Value
}

// PoolSet aggregates field pools and full-record pools per collection.
// Record pools back correlation groups: every parameter in a group
// reads from the same sampled record, so the whole source record has to
// be retained, not just one field.
type PoolSet struct {
	fields  map[string]*ValuePool // keyed collection + "\x00" + field
	records map[string][]Document // keyed collection
}

func fieldKey(collection, field string) string {
	return collection + "\x00" + field
}

// SampleValue draws a uniform value from the (collection, field) pool.
func (p *PoolSet) SampleValue(collection, field string) (Value, bool) {
	pool, ok := p.fields[fieldKey(collection, field)]
	if !ok || len(pool.Values) == 0 {
		return nil, false
	}
	return pool.Values[rand.Intn(len(pool.Values))], true
}

// SampleRecord draws a uniform full record from the collection's record
// pool.
func (p *PoolSet) SampleRecord(collection string) (Document, error) {
	recs := p.records[collection]
	if len(recs) == 0 {
		return nil, &NotConfiguredError{Collection: collection}
	}
	return recs[rand.Intn(len(recs))], nil
}

// LoadPools scans every sample_from_store spec across the definitions
// and populates the pools they need: a field pool per untagged
// (collection, field) pair and a record pool per collection referenced
// by a correlation group. Runs once at startup, outside measured time.
func LoadPools(ctx context.Context, c Collaborator, defs []*QueryDefinition, sampleSize int) (*PoolSet, error) {
	set := &PoolSet{
		fields:  make(map[string]*ValuePool),
		records: make(map[string][]Document),
	}

	for _, def := range defs {
		for name, spec := range def.Params {
			if spec.Kind != ParamSampleFromStore {
				continue
			}
			if spec.CorrelationGroup != "" {
				if err := set.loadRecords(ctx, c, spec.Collection, sampleSize); err != nil {
					return nil, err
				}
				continue
			}
			if err := set.loadField(ctx, c, spec, sampleSize); err != nil {
				return nil, err
			}
			logrus.WithFields(logrus.Fields{
				"definition": def.Name,
				"parameter":  name,
				"collection": spec.Collection,
				"field":      spec.Field,
			}).Debug("value pool loaded")
		}
	}
	return set, nil
}

func (p *PoolSet) loadField(ctx context.Context, c Collaborator, spec *ParameterSpec, sampleSize int) error {
	key := fieldKey(spec.Collection, spec.Field)
	if _, done := p.fields[key]; done {
		return nil
	}
	values, err := c.SampleField(ctx, spec.Collection, spec.Field, sampleSize)
	if err != nil {
		return wrapDataAccess("SampleField", spec.Collection, err)
	}
	if len(values) == 0 {
		logrus.WithFields(logrus.Fields{
			"collection": spec.Collection,
			"field":      spec.Field,
		}).Warn("empty value pool, sampled parameters will fall back to record pool")
	}
	p.fields[key] = &ValuePool{Collection: spec.Collection, Field: spec.Field, Values: values}
	return nil
}

func (p *PoolSet) loadRecords(ctx context.Context, c Collaborator, collection string, sampleSize int) error {
	if _, done := p.records[collection]; done {
		return nil
	}
	records, err := c.SampleRecords(ctx, collection, sampleSize)
	if err != nil {
		return wrapDataAccess("SampleRecords", collection, err)
	}
	p.records[collection] = records
	return nil
}
