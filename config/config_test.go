package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docbench/query"
)

const sampleWorkload = `
queries:
  - name: person_by_dob_name
    collection: persons
    limit: 100
    filter:
      dob: "${param:dob}"
      name.full: "${param:name}"
    params:
      dob:
        kind: sample_from_store
        collection: persons
        field: dob
        correlation_group: person
      name:
        kind: sample_from_store
        collection: persons
        field: name.full
        correlation_group: person
  - name: phone_to_person
    chain:
      - collection: phones
        local_field: owner_id
        filter:
          number: "${param:phone}"
      - collection: persons
        foreign_field: _id
    params:
      phone:
        kind: sample_from_store
        collection: phones
        field: number
  - name: account_range
    collection: accounts
    filter:
      region:
        $in: ["77", "78"]
      balance: "${param:bal}"
    params:
      bal:
        kind: random_range
        min: 1
        max: 1000
`

func TestParseWorkload(t *testing.T) {
	defs, err := Parse([]byte(sampleWorkload))
	require.NoError(t, err)
	require.Len(t, defs, 3)

	first := defs[0]
	assert.Equal(t, "person_by_dob_name", first.Name)
	assert.Equal(t, "persons", first.Collection)
	assert.Equal(t, 100, first.Limit)
	assert.Equal(t, "${param:dob}", first.Filter["dob"])
	require.Contains(t, first.Params, "dob")
	assert.Equal(t, query.ParamSampleFromStore, first.Params["dob"].Kind)
	assert.Equal(t, "person", first.Params["dob"].CorrelationGroup)
	assert.Nil(t, first.Chain)

	chained := defs[1]
	require.NotNil(t, chained.Chain)
	assert.Equal(t, "phones", chained.Chain.Collection)
	assert.Equal(t, "owner_id", chained.Chain.LocalField)
	require.NotNil(t, chained.Chain.Next)
	assert.Equal(t, "persons", chained.Chain.Next.Collection)
	assert.Equal(t, "_id", chained.Chain.Next.ForeignField)
	assert.Nil(t, chained.Chain.Next.Next)

	ranged := defs[2]
	assert.Equal(t, query.ParamRandomRange, ranged.Params["bal"].Kind)
	assert.Equal(t, int64(1000), ranged.Params["bal"].Max)

	// yaml.v2 nested maps must be normalized into the engine's
	// map[string]interface{} tree.
	in, ok := ranged.Filter["region"].(map[string]interface{})
	require.True(t, ok, "nested filter maps must be map[string]interface{}, got %T", ranged.Filter["region"])
	assert.Equal(t, []interface{}{"77", "78"}, in["$in"])
}

func TestParseRejectsEmptyWorkload(t *testing.T) {
	_, err := Parse([]byte("queries: []"))
	require.Error(t, err)
}

func TestParseRejectsInvalidDefinition(t *testing.T) {
	bad := `
queries:
  - name: nameless_target
    params:
      x:
        kind: fixed
        value: 1
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nameless_target")
}
