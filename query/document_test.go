package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPathNested(t *testing.T) {
	doc := Document{
		"name": Document{"full": "Ada Lovelace"},
		"dob":  "1815-12-10",
	}

	v, ok := ExtractPath(doc, "name.full")
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", v)

	v, ok = ExtractPath(doc, "dob")
	require.True(t, ok)
	assert.Equal(t, "1815-12-10", v)

	_, ok = ExtractPath(doc, "name.first")
	assert.False(t, ok)

	_, ok = ExtractPath(doc, "address.city")
	assert.False(t, ok)
}

func TestExtractPathFlattensArrays(t *testing.T) {
	// Arrays at any depth are searched transparently.
	doc := Document{
		"contacts": []interface{}{
			Document{"phones": []interface{}{
				Document{"number": "111"},
				Document{"number": "222"},
			}},
			Document{"phones": []interface{}{
				Document{"number": "333"},
			}},
		},
	}

	v, ok := ExtractPath(doc, "contacts.phones.number")
	require.True(t, ok)
	assert.Equal(t, "111", v)

	all := ExtractAll(doc, "contacts.phones.number")
	assert.Equal(t, []Value{"111", "222", "333"}, all)
}

func TestExtractPathArrayLeaf(t *testing.T) {
	doc := Document{
		"tags": []interface{}{"a", "b"},
		"deep": []interface{}{[]interface{}{"x"}, "y"},
	}

	assert.Equal(t, []Value{"a", "b"}, ExtractAll(doc, "tags"))
	// Nested arrays flatten at the leaf too.
	assert.Equal(t, []Value{"x", "y"}, ExtractAll(doc, "deep"))
}

func TestExtractPathEmbeddedDocumentLeaf(t *testing.T) {
	doc := Document{"name": Document{"full": "X"}}
	v, ok := ExtractPath(doc, "name")
	require.True(t, ok)
	assert.Equal(t, Document{"full": "X"}, v)
}
