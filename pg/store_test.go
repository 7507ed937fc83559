package pg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docbench/query"
)

func TestCallCtxSurvivesRunCancellation(t *testing.T) {
	// Cancelling the run context stops dispatch only; an in-flight call
	// keeps running under its own per-call deadline.
	s := &Store{timeout: time.Hour}
	runCtx, cancel := context.WithCancel(context.Background())

	callCtx, done := s.callCtx(runCtx)
	defer done()
	cancel()

	select {
	case <-callCtx.Done():
		t.Fatal("per-call context died with the run context")
	default:
	}
	_, hasDeadline := callCtx.Deadline()
	assert.True(t, hasDeadline)
}

func TestBuildWhereEquality(t *testing.T) {
	where, args := buildWhere(query.Document{"name.full": "Ivan Petrov"})
	assert.Equal(t, ` WHERE doc #>> '{name,full}' = $1`, where)
	assert.Equal(t, []interface{}{"Ivan Petrov"}, args)
}

func TestBuildWhereInSet(t *testing.T) {
	where, args := buildWhere(query.Document{
		"_id": map[string]interface{}{"$in": []interface{}{"p1", "p2"}},
	})
	assert.Equal(t, ` WHERE doc #>> '{_id}' = ANY($1)`, where)
	require.Len(t, args, 1)
	assert.Equal(t, []string{"p1", "p2"}, args[0])
}

func TestBuildWhereEmptyFilter(t *testing.T) {
	where, args := buildWhere(query.Document{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestTextValueNumbers(t *testing.T) {
	// json numbers decode as float64; whole values must compare equal
	// to jsonb's text projection of an integer.
	assert.Equal(t, "42", textValue(float64(42)))
	assert.Equal(t, "4.5", textValue(4.5))
	assert.Equal(t, "42", textValue(int64(42)))
	assert.Equal(t, "moscow", textValue("moscow"))
}

func TestTextPathEscapesQuotes(t *testing.T) {
	assert.Equal(t, `'{a,b''c}'`, textPath("a.b'c"))
}
