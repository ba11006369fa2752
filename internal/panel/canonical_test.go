package panel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelarc/panelarc/internal/panel"
)

func TestMarshalCanonical_SortedKeysNoWhitespace(t *testing.T) {
	f := panel.Fields{
		"z": panel.Int(1),
		"a": panel.String("hi"),
		"m": panel.Bool(false),
	}
	b, err := panel.MarshalCanonical(f)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"hi","m":false,"z":1}`, string(b))
}

func TestMarshalCanonical_FloatAlwaysCarriesPoint(t *testing.T) {
	b, err := panel.MarshalCanonical(panel.Fields{"x": panel.Float(10)})
	require.NoError(t, err)
	assert.Equal(t, `{"x":10.0}`, string(b), "whole floats must stay distinguishable from ints")

	b, err = panel.MarshalCanonical(panel.Fields{"x": panel.Float(12.5)})
	require.NoError(t, err)
	assert.Equal(t, `{"x":12.5}`, string(b))
}

func TestMarshalCanonical_RejectsNonFiniteFloats(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		_, err := panel.MarshalCanonical(panel.Fields{"x": panel.Float(f)})
		require.Error(t, err, "Float(%v) has no JSON encoding and must not marshal", f)
	}
}

func TestMarshalCanonical_NAIsNull(t *testing.T) {
	b, err := panel.MarshalCanonical(panel.Fields{"x": panel.NA{}})
	require.NoError(t, err)
	assert.Equal(t, `{"x":null}`, string(b))
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	f := panel.Fields{"b": panel.Float(2), "a": panel.Int(1), "c": panel.NA{}}
	first, err := panel.MarshalCanonical(f)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := panel.MarshalCanonical(f)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestUnmarshalFields_RoundTripPreservesTypes(t *testing.T) {
	f := panel.Fields{
		"f":  panel.Float(10),
		"i":  panel.Int(10),
		"s":  panel.String("ten"),
		"b":  panel.Bool(true),
		"na": panel.NA{},
	}
	b, err := panel.MarshalCanonical(f)
	require.NoError(t, err)

	got, err := panel.UnmarshalFields(b)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestUnmarshalFields_Malformed(t *testing.T) {
	_, err := panel.UnmarshalFields([]byte(`{"x":`))
	require.Error(t, err)
}

func TestSortRows(t *testing.T) {
	rows := []panel.Row{
		{Location: "ca", Time: 1, Version: 1},
		{Location: "ak", Time: 2, Version: 1},
		{Location: "ak", Time: 1, Version: 2},
		{Location: "ak", Time: 1, Version: 1},
	}
	panel.SortRows(rows)

	keys := make([]panel.Key, len(rows))
	for i, r := range rows {
		keys[i] = r.Key()
	}
	assert.Equal(t, []panel.Key{
		{Location: "ak", Time: 1, Version: 1},
		{Location: "ak", Time: 1, Version: 2},
		{Location: "ak", Time: 2, Version: 1},
		{Location: "ca", Time: 1, Version: 1},
	}, keys)
}
