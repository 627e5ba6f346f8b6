package dataset

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lejarx/ncov-incubation/common"
)

const header = "UID,EL,ER,SL,SR,SL_fever,SR_fever,rep_date,country_dest,reviewed\n"

func TestParseKeepsValidRows(t *testing.T) {
	t.Parallel()

	ds, err := Parse(context.Background(), strings.NewReader(header+
		"1,2019-12-25,2019-12-28,2019-12-29,2020-01-02,,,2020-01-10,Japan,yes\n"+
		"2,2019-12-20,2019-12-22,2019-12-23,2019-12-27,,,2020-01-10,Wuhan,yes\n"))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Size())

	obs := ds.Observations[0]
	assert.Equal(t, "1", obs.SubjectID)
	assert.InDelta(t, 24.0, obs.EL, 1e-9)
	assert.InDelta(t, 27.0, obs.ER, 1e-9)
	assert.InDelta(t, 28.0, obs.SL, 1e-9)
	assert.InDelta(t, 32.0, obs.SR, 1e-9)
	assert.Equal(t, "Japan", obs.Destination)
	assert.True(t, obs.Valid())
}

func TestParseSubstitutionChain(t *testing.T) {
	t.Parallel()

	t.Run("missing EL defaults to study start", func(t *testing.T) {
		t.Parallel()
		ds, err := Parse(context.Background(), strings.NewReader(header+
			"1,,2019-12-28,2019-12-29,2020-01-02,,,2020-01-10,Japan,yes\n"))
		require.NoError(t, err)
		require.Equal(t, 1, ds.Size())
		assert.Zero(t, ds.Observations[0].EL)
	})

	t.Run("missing SR falls back to report date", func(t *testing.T) {
		t.Parallel()
		ds, err := Parse(context.Background(), strings.NewReader(header+
			"1,2019-12-25,2019-12-28,2019-12-29,,,,2020-01-02,Japan,yes\n"))
		require.NoError(t, err)
		require.Equal(t, 1, ds.Size())
		assert.InDelta(t, 32.0, ds.Observations[0].SR, 1e-9)
	})

	t.Run("missing SR and report date drops the row", func(t *testing.T) {
		t.Parallel()
		_, err := Parse(context.Background(), strings.NewReader(header+
			"1,2019-12-25,2019-12-28,2019-12-29,,,,,Japan,yes\n"))
		assert.ErrorIs(t, err, common.ErrorEmptyDataset)
	})

	t.Run("missing ER falls back to SR", func(t *testing.T) {
		t.Parallel()
		ds, err := Parse(context.Background(), strings.NewReader(header+
			"1,2019-12-25,,2019-12-29,2020-01-02,,,2020-01-10,Japan,yes\n"))
		require.NoError(t, err)
		require.Equal(t, 1, ds.Size())
		assert.InDelta(t, ds.Observations[0].SR, ds.Observations[0].ER, 1e-9)
	})

	t.Run("missing SL falls back to SR", func(t *testing.T) {
		t.Parallel()
		ds, err := Parse(context.Background(), strings.NewReader(header+
			"1,2019-12-25,2019-12-28,,2020-01-02,,,2020-01-10,Japan,yes\n"))
		require.NoError(t, err)
		require.Equal(t, 1, ds.Size())
		assert.InDelta(t, ds.Observations[0].SR, ds.Observations[0].SL, 1e-9)
	})

	t.Run("partial fever window derives from onset window", func(t *testing.T) {
		t.Parallel()
		ds, err := Parse(context.Background(), strings.NewReader(header+
			"1,2019-12-25,2019-12-28,2019-12-29,2020-01-02,2019-12-30,,2020-01-10,Japan,yes\n"))
		require.NoError(t, err)
		require.Equal(t, 1, ds.Size())
		obs := ds.Observations[0]
		assert.True(t, obs.Fever)
		assert.InDelta(t, 29.0, obs.FeverSL, 1e-9)
		assert.InDelta(t, obs.SR, obs.FeverSR, 1e-9)
	})
}

func TestParseDropsRows(t *testing.T) {
	t.Parallel()

	t.Run("unreviewed rows dropped", func(t *testing.T) {
		t.Parallel()
		ds, err := Parse(context.Background(), strings.NewReader(header+
			"1,2019-12-25,2019-12-28,2019-12-29,2020-01-02,,,2020-01-10,Japan,yes\n"+
			"2,2019-12-25,2019-12-28,2019-12-29,2020-01-02,,,2020-01-10,Japan,no\n"+
			"3,2019-12-25,2019-12-28,2019-12-29,2020-01-02,,,2020-01-10,Japan,\n"))
		require.NoError(t, err)
		assert.Equal(t, 1, ds.Size())
	})

	t.Run("window ordering violations dropped", func(t *testing.T) {
		t.Parallel()
		// Exposure window ends after the onset window ends.
		ds, err := Parse(context.Background(), strings.NewReader(header+
			"1,2019-12-25,2020-01-05,2019-12-29,2020-01-02,,,2020-01-10,Japan,yes\n"+
			"2,2019-12-25,2019-12-28,2019-12-29,2020-01-02,,,2020-01-10,Japan,yes\n"))
		require.NoError(t, err)
		require.Equal(t, 1, ds.Size())
		assert.Equal(t, "2", ds.Observations[0].SubjectID)
	})

	t.Run("admitted rows always satisfy the invariants", func(t *testing.T) {
		t.Parallel()
		ds, err := Parse(context.Background(), strings.NewReader(header+
			"1,2019-12-25,2019-12-28,2019-12-29,2020-01-02,,,2020-01-10,Japan,yes\n"+
			"2,,2019-12-22,2019-12-23,,,,2019-12-27,Wuhan,yes\n"+
			"3,2020-01-03,2020-01-03,2020-01-03,2020-01-03,,,2020-01-10,Korea,yes\n"))
		require.NoError(t, err)
		for i := range ds.Observations {
			o := &ds.Observations[i]
			assert.LessOrEqual(t, o.EL, o.ER)
			assert.LessOrEqual(t, o.SL, o.SR)
			assert.LessOrEqual(t, o.ER, o.SR)
			assert.LessOrEqual(t, o.EL, o.SL)
		}
	})

	t.Run("all rows invalid surfaces empty dataset", func(t *testing.T) {
		t.Parallel()
		_, err := Parse(context.Background(), strings.NewReader(header+
			"1,2019-12-25,2020-01-05,2019-12-29,2020-01-02,,,2020-01-10,Japan,no\n"))
		assert.ErrorIs(t, err, common.ErrorEmptyDataset)
	})
}

func TestParseRejectsMissingColumns(t *testing.T) {
	t.Parallel()

	_, err := Parse(context.Background(), strings.NewReader("UID,EL,ER\n1,,\n"))
	assert.ErrorIs(t, err, common.ErrorMalformedRecord)
}
