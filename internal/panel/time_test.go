package panel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelarc/panelarc/internal/panel"
)

func TestTimeKind_Valid(t *testing.T) {
	assert.True(t, panel.KindDay.Valid())
	assert.True(t, panel.KindWeek.Valid())
	assert.True(t, panel.KindInteger.Valid())
	assert.False(t, panel.TimeKind("fortnight").Valid())
}

func TestKindDay_ParseFormatRoundTrip(t *testing.T) {
	got, err := panel.KindDay.Parse("2020-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2020-03-15", panel.KindDay.Format(got))

	// Day ordinals are days since the epoch, so consecutive dates differ
	// by exactly one.
	next, err := panel.KindDay.Parse("2020-03-16")
	require.NoError(t, err)
	assert.Equal(t, panel.Time(1), next-got)

	epoch, err := panel.KindDay.Parse("1970-01-01")
	require.NoError(t, err)
	assert.Equal(t, panel.Time(0), epoch)
}

func TestKindDay_ParseRejectsGarbage(t *testing.T) {
	_, err := panel.KindDay.Parse("03/15/2020")
	require.Error(t, err)
	_, err = panel.KindDay.Parse("2020-13-40")
	require.Error(t, err)
}

func TestKindWeek_Parse(t *testing.T) {
	got, err := panel.KindWeek.Parse("202013")
	require.NoError(t, err)
	assert.Equal(t, panel.Time(202013), got)
	assert.Equal(t, "202013", panel.KindWeek.Format(got))

	_, err = panel.KindWeek.Parse("202099")
	require.Error(t, err, "week 99 is out of range")
	_, err = panel.KindWeek.Parse("202000")
	require.Error(t, err, "week 0 is out of range")
}

func TestKindInteger_Parse(t *testing.T) {
	got, err := panel.KindInteger.Parse("-5")
	require.NoError(t, err)
	assert.Equal(t, panel.Time(-5), got)

	_, err = panel.KindInteger.Parse("five")
	require.Error(t, err)
}

func TestValidOrdinal(t *testing.T) {
	assert.True(t, panel.KindInteger.ValidOrdinal(panel.Time(1<<40)))
	assert.True(t, panel.KindWeek.ValidOrdinal(panel.Time(202013)))
	assert.False(t, panel.KindWeek.ValidOrdinal(panel.Time(202099)))
	assert.False(t, panel.KindDay.ValidOrdinal(panel.Time(1<<40)), "a week-shaped ordinal is not a plausible day")
}

func TestNormalizeLocation(t *testing.T) {
	decomposed := "que\u0301bec"
	composed := "qu\u00e9bec"
	assert.NotEqual(t, decomposed, composed)
	assert.Equal(t, panel.NormalizeLocation(composed), panel.NormalizeLocation(decomposed))
}
