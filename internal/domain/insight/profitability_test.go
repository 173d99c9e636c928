package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monthsBack returns a date inside the calendar month n months before testNow
func monthsBack(n int) time.Time {
	return time.Date(testNow.Year(), testNow.Month(), 10, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
}

func TestAnalyzeProfitability_BucketCompleteness(t *testing.T) {
	got := AnalyzeProfitability(testNow, nil, nil)

	require.Len(t, got.Months, 12)

	// Chronologically ascending, ending at the current month.
	last := got.Months[11]
	assert.Equal(t, testNow.Year(), last.Year)
	assert.Equal(t, testNow.Month(), last.Month)
	for i := 1; i < 12; i++ {
		prev := time.Date(got.Months[i-1].Year, got.Months[i-1].Month, 1, 0, 0, 0, 0, time.UTC)
		cur := time.Date(got.Months[i].Year, got.Months[i].Month, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, prev.AddDate(0, 1, 0), cur)
	}

	// Zero-filled, never omitted.
	for _, m := range got.Months {
		assert.True(t, m.Revenue.IsZero())
		assert.True(t, m.Cost.IsZero())
	}
}

func TestAnalyzeProfitability_RevenueAndCostBuckets(t *testing.T) {
	invoices := []InvoiceFact{
		paidInvoice(1000, monthsBack(1), monthsBack(1), monthsBack(1)),
		openInvoice(500, monthsBack(1), daysFromNow(30)),
		openInvoice(200, monthsBack(3), daysFromNow(30)),
		// Outside the window: dropped from buckets.
		openInvoice(9999, monthsBack(14), monthsBack(13)),
	}
	sales := []SaleFact{
		sale(900, 800, 100, monthsBack(1)), // cost 700
		sale(300, 250, 50, monthsBack(3)),  // cost 200
	}

	got := AnalyzeProfitability(testNow, invoices, sales)

	assert.Equal(t, "1500", got.Months[10].Revenue.String())
	assert.Equal(t, "700", got.Months[10].Cost.String())
	assert.Equal(t, "200", got.Months[8].Revenue.String())
	assert.Equal(t, "200", got.Months[8].Cost.String())
	assert.Equal(t, "1700", got.TotalRevenue.String())

	require.True(t, got.HasCostData)
	require.NotNil(t, got.TotalCost)
	require.NotNil(t, got.Profit)
	require.NotNil(t, got.MarginPercent)
	assert.Equal(t, "900", got.TotalCost.String())
	assert.Equal(t, "800", got.Profit.String())
	assert.Equal(t, "47.06", got.MarginPercent.String())
}

func TestAnalyzeProfitability_NoCostData(t *testing.T) {
	invoices := []InvoiceFact{
		paidInvoice(1000, monthsBack(2), monthsBack(2), monthsBack(2)),
		openInvoice(500, monthsBack(1), daysFromNow(30)),
	}

	got := AnalyzeProfitability(testNow, invoices, nil)

	assert.False(t, got.HasCostData)
	assert.Nil(t, got.TotalCost)
	assert.Nil(t, got.Profit)
	assert.Nil(t, got.MarginPercent)
	assert.Equal(t, "1500", got.TotalRevenue.String())
}

func TestAnalyzeProfitability_MarginNeedsRevenue(t *testing.T) {
	// Sales but no invoiced revenue: cost and profit are reported,
	// margin is not (division by zero).
	sales := []SaleFact{sale(100, 100, 0, monthsBack(1))}

	got := AnalyzeProfitability(testNow, nil, sales)

	require.True(t, got.HasCostData)
	require.NotNil(t, got.Profit)
	assert.Equal(t, "-100", got.Profit.String())
	assert.Nil(t, got.MarginPercent)
}

func TestAnalyzeProfitability_BestWorstMonth(t *testing.T) {
	t.Run("distinct best and worst", func(t *testing.T) {
		invoices := []InvoiceFact{
			openInvoice(900, monthsBack(2), daysFromNow(30)),
			openInvoice(100, monthsBack(5), daysFromNow(30)),
			openInvoice(400, monthsBack(8), daysFromNow(30)),
		}
		got := AnalyzeProfitability(testNow, invoices, nil)

		require.NotNil(t, got.BestMonth)
		require.NotNil(t, got.WorstMonth)
		assert.Equal(t, "900", got.BestMonth.Revenue.String())
		assert.Equal(t, "100", got.WorstMonth.Revenue.String())
	})

	t.Run("single active month reports no worst", func(t *testing.T) {
		invoices := []InvoiceFact{
			openInvoice(900, monthsBack(2), daysFromNow(30)),
		}
		got := AnalyzeProfitability(testNow, invoices, nil)

		require.NotNil(t, got.BestMonth)
		assert.Nil(t, got.WorstMonth)
	})

	t.Run("no activity reports neither", func(t *testing.T) {
		got := AnalyzeProfitability(testNow, nil, nil)
		assert.Nil(t, got.BestMonth)
		assert.Nil(t, got.WorstMonth)
	})
}

func TestAnalyzeProfitability_Trend(t *testing.T) {
	revenueIn := func(monthsAgo int, amount float64) InvoiceFact {
		return openInvoice(amount, monthsBack(monthsAgo), daysFromNow(60))
	}

	t.Run("halved revenue trends down", func(t *testing.T) {
		invoices := []InvoiceFact{
			revenueIn(5, 200), revenueIn(4, 200), revenueIn(3, 200),
			revenueIn(2, 100), revenueIn(1, 100), revenueIn(0, 100),
		}
		got := AnalyzeProfitability(testNow, invoices, nil)
		assert.Equal(t, TrendDown, got.Trend)
	})

	t.Run("growth above five percent trends up", func(t *testing.T) {
		invoices := []InvoiceFact{
			revenueIn(5, 100), revenueIn(4, 100), revenueIn(3, 100),
			revenueIn(2, 150), revenueIn(1, 150), revenueIn(0, 150),
		}
		got := AnalyzeProfitability(testNow, invoices, nil)
		assert.Equal(t, TrendUp, got.Trend)
	})

	t.Run("small variation is stable", func(t *testing.T) {
		invoices := []InvoiceFact{
			revenueIn(5, 100), revenueIn(4, 100), revenueIn(3, 100),
			revenueIn(2, 101), revenueIn(1, 101), revenueIn(0, 101),
		}
		got := AnalyzeProfitability(testNow, invoices, nil)
		assert.Equal(t, TrendStable, got.Trend)
	})

	t.Run("no previous activity with recent revenue trends up", func(t *testing.T) {
		invoices := []InvoiceFact{revenueIn(1, 100)}
		got := AnalyzeProfitability(testNow, invoices, nil)
		assert.Equal(t, TrendUp, got.Trend)
	})

	t.Run("no activity at all is stable", func(t *testing.T) {
		got := AnalyzeProfitability(testNow, nil, nil)
		assert.Equal(t, TrendStable, got.Trend)
	})
}
