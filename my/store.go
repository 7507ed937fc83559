package my

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docbench/query"
)

// Store adapts a MySQL handle to the engine's collaborator interface.
type Store struct {
	db      *sql.DB
	timeout time.Duration
}

// NewStore wraps an open handle. timeout is the per-call deadline
// imposed at the data-access boundary.
func NewStore(db *sql.DB, timeout time.Duration) *Store {
	return &Store{db: db, timeout: timeout}
}

// Close closes the handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Find translates the engine filter into JSON_EXTRACT predicates:
// equality and nested dot paths compare the unquoted extraction, value
// sets become IN (...).
func (s *Store) Find(ctx context.Context, collection string, filter query.Document, limit int) ([]query.Document, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	where, args := buildWhere(filter)
	q := fmt.Sprintf("SELECT doc FROM %s%s", quoteIdent(collection), where)
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
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
// ORDER BY RAND() is acceptable.
func (s *Store) SampleRecords(ctx context.Context, collection string, sampleSize int) ([]query.Document, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	q := fmt.Sprintf("SELECT doc FROM %s ORDER BY RAND() LIMIT %d", quoteIdent(collection), sampleSize)
	rows, err := s.db.QueryContext(ctx, q)
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

func scanDocs(rows *sql.Rows) ([]query.Document, error) {
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

func buildWhere(filter query.Document) (string, []interface{}) {
	if len(filter) == 0 {
		return "", nil
	}
	var preds []string
	var args []interface{}
	for field, v := range filter {
		expr := fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(doc, %s))", jsonPath(field))
		if set, ok := inSet(v); ok {
			marks := strings.TrimSuffix(strings.Repeat("?,", len(set)), ",")
			preds = append(preds, fmt.Sprintf("%s IN (%s)", expr, marks))
			for _, e := range set {
				args = append(args, textValue(e))
			}
			continue
		}
		preds = append(preds, expr+" = ?")
		args = append(args, textValue(v))
	}
	return " WHERE " + strings.Join(preds, " AND "), args
}

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

// jsonPath renders "name.full" as the literal '$.name.full'.
func jsonPath(field string) string {
	return "'$." + strings.ReplaceAll(strings.ReplaceAll(field, "'", "''"), "\"", "") + "'"
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "") + "`"
}

func textValue(v query.Value) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%v", n)
	default:
		return fmt.Sprint(v)
	}
}
