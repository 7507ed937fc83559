package query

import "context"

// Collaborator is the narrow data-access surface the engine consumes.
// Find must support equality, value-in-set ({"$in": [...]}) and nested
// dot-path filters. SampleField and SampleRecords run only at startup
// to populate value pools, never inside measured iterations.
type Collaborator interface {
	Find(ctx context.Context, collection string, filter Document, limit int) ([]Document, error)
	SampleField(ctx context.Context, collection, fieldPath string, sampleSize int) ([]Value, error)
	SampleRecords(ctx context.Context, collection string, sampleSize int) ([]Document, error)
}
