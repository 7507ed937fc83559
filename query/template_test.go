package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTemplateSubstitution(t *testing.T) {
	specs := map[string]*ParameterSpec{
		"x": {Kind: ParamFixed, Value: "v"},
	}
	tpl := Document{
		"a": "${param:x}",
		"b": []interface{}{"${param:x}", "lit"},
	}

	got, err := ResolveTemplate(tpl, specs, NewGenerator(nil), NewCorrelationScope())
	require.NoError(t, err)
	assert.Equal(t, Document{
		"a": "v",
		"b": []interface{}{"v", "lit"},
	}, got)
}

func TestResolveTemplatePassThrough(t *testing.T) {
	tpl := Document{
		"status": "active",
		"n":      int64(3),
		"nested": Document{"flag": true},
	}
	got, err := ResolveTemplate(tpl, nil, NewGenerator(nil), NewCorrelationScope())
	require.NoError(t, err)
	assert.Equal(t, tpl, got)
}

func TestResolveTemplateUnknownParameter(t *testing.T) {
	specs := map[string]*ParameterSpec{
		"x": {Kind: ParamFixed, Value: "v"},
	}
	tpl := Document{"a": "${param:ghost}"}

	_, err := ResolveTemplate(tpl, specs, NewGenerator(nil), NewCorrelationScope())
	var ue *UnknownParameterError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "ghost", ue.Name)
	assert.True(t, IsConfig(err))
}

func TestResolveTemplateEmptySpecSet(t *testing.T) {
	// A placeholder with no specs at all is a distinct, equally fatal
	// configuration error.
	tpl := Document{"a": "${param:x}"}
	_, err := ResolveTemplate(tpl, nil, NewGenerator(nil), NewCorrelationScope())
	require.Error(t, err)
	var ce *ConfigError
	var ue *UnknownParameterError
	assert.True(t, errors.As(err, &ce))
	assert.False(t, errors.As(err, &ue))
}

func TestCheckPlaceholders(t *testing.T) {
	specs := map[string]*ParameterSpec{
		"x": {Kind: ParamFixed, Value: "v"},
	}

	ok := Document{
		"a":      "${param:x}",
		"list":   []interface{}{"${param:x}", "lit"},
		"nested": map[string]interface{}{"b": "${param:x}"},
	}
	assert.NoError(t, CheckPlaceholders(ok, specs))

	bad := Document{"nested": map[string]interface{}{"b": "${param:ghost}"}}
	err := CheckPlaceholders(bad, specs)
	var ue *UnknownParameterError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "ghost", ue.Name)

	var ce *ConfigError
	err = CheckPlaceholders(Document{"a": "${param:x}"}, nil)
	require.Error(t, err)
	assert.True(t, errors.As(err, &ce))
}

func TestResolveTemplateOmitsMissingField(t *testing.T) {
	mock := newMock()
	mock.data["entities"] = []Document{{"company": "OOO Roga"}}
	specs := map[string]*ParameterSpec{
		"dob":     {Kind: ParamSampleFromStore, Collection: "entities", Field: "dob", CorrelationGroup: "e"},
		"company": {Kind: ParamSampleFromStore, Collection: "entities", Field: "company", CorrelationGroup: "e"},
	}
	def := &QueryDefinition{Name: "q", Collection: "entities", Params: specs}
	gen := NewGenerator(loadTestPools(t, mock, def))

	tpl := Document{"dob": "${param:dob}", "company": "${param:company}"}
	got, err := ResolveTemplate(tpl, specs, gen, NewCorrelationScope())
	require.NoError(t, err)

	// The missing field is dropped, the resolvable one stays.
	_, hasDOB := got["dob"]
	assert.False(t, hasDOB)
	assert.Equal(t, "OOO Roga", got["company"])
}
