package archive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelarc/panelarc/internal/panel"
	"github.com/panelarc/panelarc/internal/testutil"
)

func TestAsOf_StepFunction(t *testing.T) {
	a := testutil.BuildArchive(t,
		testutil.Row("ak", 1, 1, testutil.Fields("x", 10.0)),
		testutil.Row("ak", 1, 3, testutil.Fields("x", 12.0)),
	)

	t.Run("between versions carries forward", func(t *testing.T) {
		snap := a.AsOf(2)
		require.Len(t, snap.Rows, 1)
		assert.Equal(t, testutil.Fields("x", 10.0), snap.Rows[0].Fields)
		assert.Equal(t, panel.Time(2), snap.AsOfVersion)
	})

	t.Run("at revision version sees revision", func(t *testing.T) {
		snap := a.AsOf(3)
		require.Len(t, snap.Rows, 1)
		assert.Equal(t, testutil.Fields("x", 12.0), snap.Rows[0].Fields)
	})

	t.Run("before first version is empty", func(t *testing.T) {
		snap := a.AsOf(0)
		assert.Empty(t, snap.Rows)
		assert.False(t, snap.FutureCutoff)
	})
}

func TestAsOf_FutureVersionsInvisible(t *testing.T) {
	a := testutil.BuildArchive(t,
		testutil.Row("ak", 1, 1, testutil.Fields("x", 10.0)),
		testutil.Row("ak", 2, 5, testutil.Fields("x", 99.0)),
	)

	snap := a.AsOf(3)
	require.Len(t, snap.Rows, 1, "group first reported at version 5 must be omitted")
	assert.Equal(t, panel.Time(1), snap.Rows[0].Time)
}

func TestAsOf_FutureCutoffAdvisory(t *testing.T) {
	a := testutil.BuildArchive(t,
		testutil.Row("ak", 1, 1, testutil.Fields("x", 10.0)),
		testutil.Row("ak", 1, 3, testutil.Fields("x", 12.0)),
	)

	snap := a.AsOf(10)
	assert.True(t, snap.FutureCutoff, "cutoff beyond max version is advisory")
	require.Len(t, snap.Rows, 1, "full LOCF snapshot still returned")
	assert.Equal(t, testutil.Fields("x", 12.0), snap.Rows[0].Fields)

	assert.False(t, a.AsOf(3).FutureCutoff)
}

func TestAsOf_SortedByLocationThenTime(t *testing.T) {
	a := testutil.BuildArchive(t,
		testutil.Row("ca", 1, 1, testutil.Fields("x", 1.0)),
		testutil.Row("ak", 2, 1, testutil.Fields("x", 2.0)),
		testutil.Row("ak", 1, 1, testutil.Fields("x", 3.0)),
	)

	snap := a.AsOf(1)
	require.Len(t, snap.Rows, 3)
	for i := 1; i < len(snap.Rows); i++ {
		assert.Negative(t, panel.CompareGroup(snap.Rows[i-1].Group(), snap.Rows[i].Group()))
	}
}

func TestAsOf_MonotonicLOCF(t *testing.T) {
	a := testutil.BuildArchive(t,
		testutil.Row("ak", 1, 2, testutil.Fields("x", 10.0)),
		testutil.Row("ak", 1, 7, testutil.Fields("x", 12.0)),
	)

	// No new version for the key in (2, 6]: every cutoff agrees with v=2.
	want := a.AsOf(2).Rows
	for cutoff := panel.Time(3); cutoff <= 6; cutoff++ {
		assert.Equal(t, want, a.AsOf(cutoff).Rows, "cutoff %d", cutoff)
	}
}

func TestAsOf_IndependentOfLaterMutation(t *testing.T) {
	a := testutil.BuildArchive(t,
		testutil.Row("ak", 1, 1, testutil.Fields("x", 10.0)),
	)

	snap := a.AsOf(1)
	require.NoError(t, a.Append([]panel.Row{
		testutil.Row("ak", 1, 1, testutil.Fields("x", 10.0)), // dedupe no-op
		testutil.Row("ak", 2, 1, testutil.Fields("x", 55.0)),
	}))

	assert.Len(t, snap.Rows, 1, "snapshot must not observe later archive mutation")
}

func TestSnapshot_Lookup(t *testing.T) {
	a := testutil.BuildArchive(t,
		testutil.Row("ak", 1, 1, testutil.Fields("x", 1.0)),
		testutil.Row("ak", 2, 1, testutil.Fields("x", 2.0)),
		testutil.Row("ca", 1, 1, testutil.Fields("x", 3.0)),
	)
	snap := a.AsOf(1)

	row, ok := snap.Lookup(panel.GroupKey{Location: "ca", Time: 1})
	require.True(t, ok)
	assert.Equal(t, testutil.Fields("x", 3.0), row.Fields)

	_, ok = snap.Lookup(panel.GroupKey{Location: "ny", Time: 1})
	assert.False(t, ok)
}

func TestAsOf_EmptyArchive(t *testing.T) {
	a := testutil.BuildArchive(t)
	snap := a.AsOf(5)
	assert.Empty(t, snap.Rows)
	assert.False(t, snap.FutureCutoff, "an empty archive has nothing provisional to warn about")
	assert.Equal(t, panel.LocationKind("state"), snap.LocationKind)
}
