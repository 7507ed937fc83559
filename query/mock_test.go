package query

import (
	"context"
	"sync"
)

// mockCollaborator is the in-memory test double for the data-access
// interface. It records every Find call so tests can assert which
// collections were (and were not) queried.
type mockCollaborator struct {
	mu    sync.Mutex
	data  map[string][]Document // collection -> canned results
	calls []findCall
	err   error // returned by every call when set
}

type findCall struct {
	Collection string
	Filter     Document
	Limit      int
}

func newMock() *mockCollaborator {
	return &mockCollaborator{data: make(map[string][]Document)}
}

func (m *mockCollaborator) Find(_ context.Context, collection string, filter Document, limit int) ([]Document, error) {
	m.mu.Lock()
	m.calls = append(m.calls, findCall{Collection: collection, Filter: filter, Limit: limit})
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.data[collection], nil
}

func (m *mockCollaborator) SampleField(_ context.Context, collection, fieldPath string, sampleSize int) ([]Value, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []Value
	for _, doc := range m.data[collection] {
		if v, ok := ExtractPath(doc, fieldPath); ok {
			out = append(out, v)
		}
		if len(out) >= sampleSize {
			break
		}
	}
	return out, nil
}

func (m *mockCollaborator) SampleRecords(_ context.Context, collection string, sampleSize int) ([]Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	docs := m.data[collection]
	if len(docs) > sampleSize {
		docs = docs[:sampleSize]
	}
	return docs, nil
}

func (m *mockCollaborator) findCalls(collection string) []findCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []findCall
	for _, c := range m.calls {
		if c.Collection == collection {
			out = append(out, c)
		}
	}
	return out
}
