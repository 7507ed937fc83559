// Package query implements the join-emulation engine: correlated
// parameter generation, filter template resolution, and multi-hop
// chained lookups against a document store that has no native joins.
package query

import "strings"

// Document is an opaque, traversable key-value tree returned by a
// lookup. Nested documents are map[string]interface{} and arrays are
// []interface{} regardless of the backend wire format.
type Document = map[string]interface{}

// Value is any scalar or composite value that can appear in a Document.
type Value = interface{}

// ExtractPath resolves a dot-notation path against a document and
// returns the first matching leaf value. Array segments are flattened
// transparently: when a path segment addresses an array, every element
// is searched, at any nesting depth. The second return is false when
// no leaf matches.
func ExtractPath(doc Document, path string) (Value, bool) {
	vals := extract(doc, strings.Split(path, "."), 1)
	if len(vals) == 0 {
		return nil, false
	}
	return vals[0], true
}

// ExtractAll resolves a dot-notation path and returns every matching
// leaf value, flattening through arrays at any depth. Used by the join
// executor when a linking field holds multiple candidate keys.
func ExtractAll(doc Document, path string) []Value {
	return extract(doc, strings.Split(path, "."), -1)
}

// extract walks node along segments. max < 0 collects every leaf,
// otherwise collection stops once max values are found.
func extract(node Value, segments []string, max int) []Value {
	if len(segments) == 0 {
		return flattenLeaf(node, max)
	}
	switch n := node.(type) {
	case map[string]interface{}:
		child, ok := n[segments[0]]
		if !ok {
			return nil
		}
		return extract(child, segments[1:], max)
	case []interface{}:
		var out []Value
		for _, elem := range n {
			out = append(out, extract(elem, segments, remaining(max, len(out)))...)
			if max >= 0 && len(out) >= max {
				return out[:max]
			}
		}
		return out
	default:
		return nil
	}
}

// flattenLeaf turns a terminal node into leaf values, descending
// through arrays of arrays but never into documents: a path that ends
// on an embedded document yields that document as the value.
func flattenLeaf(node Value, max int) []Value {
	arr, ok := node.([]interface{})
	if !ok {
		return []Value{node}
	}
	var out []Value
	for _, elem := range arr {
		out = append(out, flattenLeaf(elem, remaining(max, len(out)))...)
		if max >= 0 && len(out) >= max {
			return out[:max]
		}
	}
	return out
}

func remaining(max, have int) int {
	if max < 0 {
		return -1
	}
	return max - have
}
