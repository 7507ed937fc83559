// Package mongo implements the data-access collaborator against
// MongoDB.
package mongo

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docbench/query"
)

// Store is a connected MongoDB database plus the per-call timeout the
// benchmark imposes at the data-access boundary.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// Connect dials the deployment and pings it before returning.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri).SetMaxPoolSize(100))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "mongo ping")
	}
	return &Store{client: client, db: client.Database(database), timeout: timeout}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Find runs a filtered lookup. Equality, {"$in": [...]} sets and nested
// dot-path keys translate directly to MongoDB filter documents.
func (s *Store) Find(ctx context.Context, collection string, filter query.Document, limit int) ([]query.Document, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.db.Collection(collection).Find(ctx, toBSON(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeAll(ctx, cur)
}

// SampleField draws sampleSize random documents and extracts the field
// client-side, skipping documents that lack it. Startup-only.
func (s *Store) SampleField(ctx context.Context, collection, fieldPath string, sampleSize int) ([]query.Value, error) {
	docs, err := s.SampleRecords(ctx, collection, sampleSize)
	if err != nil {
		return nil, err
	}
	values := make([]query.Value, 0, len(docs))
	for _, doc := range docs {
		if v, ok := query.ExtractPath(doc, fieldPath); ok && v != nil {
			values = append(values, v)
		}
	}
	return values, nil
}

// SampleRecords draws sampleSize uniformly random documents via the
// $sample aggregation stage. Startup-only.
func (s *Store) SampleRecords(ctx context.Context, collection string, sampleSize int) ([]query.Document, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: sampleSize}}}},
	}
	cur, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	return decodeAll(ctx, cur)
}

// callCtx derives the per-call deadline. Run-level cancellation only
// stops dispatching new iterations; an in-flight call must complete or
// time out on its own, so the deadline is parented on a context that
// does not inherit the run's cancellation.
func (s *Store) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]query.Document, error) {
	var out []query.Document
	for cur.Next(ctx) {
		var m bson.M
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, fromBSONMap(m))
	}
	return out, cur.Err()
}

// toBSON renders an engine filter as bson.D with sorted keys so filter
// shape is deterministic across iterations.
func toBSON(doc query.Document) bson.D {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(bson.D, 0, len(doc))
	for _, k := range keys {
		out = append(out, bson.E{Key: k, Value: toBSONValue(doc[k])})
	}
	return out
}

func toBSONValue(v query.Value) interface{} {
	switch n := v.(type) {
	case map[string]interface{}:
		return toBSON(n)
	case []interface{}:
		arr := make(bson.A, len(n))
		for i, e := range n {
			arr[i] = toBSONValue(e)
		}
		return arr
	default:
		return v
	}
}

// fromBSONMap rebuilds decoded documents as plain map/slice trees so
// the engine's path traversal sees only map[string]interface{} and
// []interface{}.
func fromBSONMap(m bson.M) query.Document {
	out := make(query.Document, len(m))
	for k, v := range m {
		out[k] = fromBSONValue(v)
	}
	return out
}

func fromBSONValue(v interface{}) interface{} {
	switch n := v.(type) {
	case bson.M:
		return fromBSONMap(n)
	case bson.D:
		out := make(query.Document, len(n))
		for _, e := range n {
			out[e.Key] = fromBSONValue(e.Value)
		}
		return out
	case bson.A:
		arr := make([]interface{}, len(n))
		for i, e := range n {
			arr[i] = fromBSONValue(e)
		}
		return arr
	default:
		return v
	}
}
