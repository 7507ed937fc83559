package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"docbench/query"
)

// Store adapts a pgx pool to the engine's collaborator interface.
type Store struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewStore wraps an open pool. timeout is the per-call deadline imposed
// at the data-access boundary.
func NewStore(pool *pgxpool.Pool, timeout time.Duration) *Store {
	return &Store{pool: pool, timeout: timeout}
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Find translates the engine filter into jsonb path predicates:
// equality and nested dot paths become `doc #>> '{a,b}' = $n`, value
// sets become `= ANY($n)`.
func (s *Store) Find(ctx context.Context, collection string, filter query.Document, limit int) ([]query.Document, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	where, args := buildWhere(filter)
	sql := fmt.Sprintf(`SELECT doc FROM %s%s`, pgx.Identifier{collection}.Sanitize(), where)
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocs(rows)
}

// SampleField draws random documents and extracts the field
// client-side. Startup-only.
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

// SampleRecords draws sampleSize random documents. Startup-only, so
// ORDER BY random() is acceptable.
func (s *Store) SampleRecords(ctx context.Context, collection string, sampleSize int) ([]query.Document, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	sql := fmt.Sprintf(`SELECT doc FROM %s ORDER BY random() LIMIT %d`,
		pgx.Identifier{collection}.Sanitize(), sampleSize)
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocs(rows)
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

func scanDocs(rows pgx.Rows) ([]query.Document, error) {
	var out []query.Document
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var doc query.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// buildWhere renders the filter's predicates. Comparisons go through
// the jsonb text projection, so parameter values are passed in their
// text form.
func buildWhere(filter query.Document) (string, []interface{}) {
	if len(filter) == 0 {
		return "", nil
	}
	var preds []string
	var args []interface{}
	n := 1
	for field, v := range filter {
		if set, ok := inSet(v); ok {
			texts := make([]string, len(set))
			for i, e := range set {
				texts[i] = textValue(e)
			}
			preds = append(preds, fmt.Sprintf(`doc #>> %s = ANY($%d)`, textPath(field), n))
			args = append(args, texts)
			n++
			continue
		}
		preds = append(preds, fmt.Sprintf(`doc #>> %s = $%d`, textPath(field), n))
		args = append(args, textValue(v))
		n++
	}
	return " WHERE " + strings.Join(preds, " AND "), args
}

// inSet recognizes the engine's {"$in": [...]} operator document.
func inSet(v query.Value) ([]query.Value, bool) {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) != 1 {
		return nil, false
	}
	arr, ok := m["$in"].([]interface{})
	if !ok {
		return nil, false
	}
	return arr, true
}

// textPath renders "name.full" as the jsonb path literal '{name,full}'.
func textPath(field string) string {
	segs := strings.Split(field, ".")
	for i, s := range segs {
		segs[i] = strings.ReplaceAll(s, "'", "''")
	}
	return "'{" + strings.Join(segs, ",") + "}'"
}

func textValue(v query.Value) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		// json numbers decode as float64; render integers without the
		// trailing .0 so they compare equal to jsonb's text projection.
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%v", n)
	default:
		return fmt.Sprint(v)
	}
}
