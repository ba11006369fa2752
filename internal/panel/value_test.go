package panel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelarc/panelarc/internal/panel"
)

func TestEqual(t *testing.T) {
	assert.True(t, panel.Equal(panel.Float(1.5), panel.Float(1.5)))
	assert.True(t, panel.Equal(panel.Int(3), panel.Int(3)))
	assert.True(t, panel.Equal(panel.String("a"), panel.String("a")))
	assert.True(t, panel.Equal(panel.Bool(true), panel.Bool(true)))
	assert.True(t, panel.Equal(panel.NA{}, panel.NA{}))

	assert.False(t, panel.Equal(panel.Float(1.5), panel.Float(1.6)))
	assert.False(t, panel.Equal(panel.NA{}, panel.Float(0)))
	assert.False(t, panel.Equal(panel.String("1"), panel.Int(1)))
}

func TestEqual_IntFloatNeverEqual(t *testing.T) {
	// A revision changing 10 to 10.0 changed the field's type, and that
	// is a real revision.
	assert.False(t, panel.Equal(panel.Int(10), panel.Float(10)))
	assert.False(t, panel.Equal(panel.Float(10), panel.Int(10)))
}

func TestFromAny(t *testing.T) {
	cases := []struct {
		in   any
		want panel.Value
	}{
		{nil, panel.NA{}},
		{float64(1.5), panel.Float(1.5)},
		{int(7), panel.Int(7)},
		{int64(7), panel.Int(7)},
		{"hello", panel.String("hello")},
		{true, panel.Bool(true)},
	}
	for _, tc := range cases {
		got, err := panel.FromAny(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := panel.FromAny([]string{"nope"})
	require.Error(t, err)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "1.5", panel.ValueString(panel.Float(1.5)))
	assert.Equal(t, "10", panel.ValueString(panel.Float(10)))
	assert.Equal(t, "7", panel.ValueString(panel.Int(7)))
	assert.Equal(t, "hi", panel.ValueString(panel.String("hi")))
	assert.Equal(t, "true", panel.ValueString(panel.Bool(true)))
	assert.Equal(t, "NA", panel.ValueString(panel.NA{}))
}
