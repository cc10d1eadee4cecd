package memstore_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geohashd/internal/stock"
	"geohashd/internal/stock/memstore"
)

func TestStore_FirstWriteWins(t *testing.T) {
	s := memstore.New()
	date := stock.Date{Year: 2009, Month: 11, Day: 30}

	rec, err := s.Get(t.Context(), date)
	require.NoError(t, err)
	require.Nil(t, rec)

	require.NoError(t, s.Put(t.Context(), stock.Record{Date: date, Value: "10309.92"}))
	require.NoError(t, s.Put(t.Context(), stock.Record{Date: date, Value: "99999.99"}))

	rec, err = s.Get(t.Context(), date)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "10309.92", rec.Value)
}
