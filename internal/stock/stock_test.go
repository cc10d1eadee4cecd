package stock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"geohashd/internal/stock"
)

func TestParseDate(t *testing.T) {
	d, err := stock.ParseDate("2009-11-30")
	require.NoError(t, err)
	require.Equal(t, stock.Date{Year: 2009, Month: time.November, Day: 30}, d)

	_, err = stock.ParseDate("11/30/2009")
	require.Error(t, err)
}

func TestDate_String_ZeroPads(t *testing.T) {
	d := stock.Date{Year: 2008, Month: time.May, Day: 3}
	require.Equal(t, "2008-05-03", d.String())
}

func TestDate_AddDays_CrossesMonthBoundary(t *testing.T) {
	d := stock.Date{Year: 2009, Month: time.December, Day: 1}
	require.Equal(t, stock.Date{Year: 2009, Month: time.November, Day: 30}, d.AddDays(-1))
}

func TestEffectiveDate(t *testing.T) {
	d := stock.Date{Year: 2009, Month: time.December, Day: 1}

	require.Equal(t, d, stock.EffectiveDate(d, cell(false)))
	require.Equal(t, d.AddDays(-1), stock.EffectiveDate(d, cell(true)))
	require.Equal(t, d, stock.EffectiveDate(d, nil))
}

func TestStatus_Terminal(t *testing.T) {
	require.False(t, stock.StatusIdle.Terminal())
	require.False(t, stock.StatusBusy.Terminal())
	require.True(t, stock.StatusSuccess.Terminal())
	require.True(t, stock.StatusNotPosted.Terminal())
	require.True(t, stock.StatusServerError.Terminal())
	require.True(t, stock.StatusAborted.Terminal())
}
