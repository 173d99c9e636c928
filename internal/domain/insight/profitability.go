package insight

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend classifies revenue direction over the trailing window
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// MonthBucket is one calendar month of revenue and cost
type MonthBucket struct {
	Year    int             `json:"year"`
	Month   time.Month      `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
}

// Profitability is the trailing-twelve-month revenue/cost/margin analysis
// for one client. Cost, profit and margin are nil when the client has no
// sale records at all; Months always holds exactly twelve buckets, oldest
// first, zero-filled for months without activity.
type Profitability struct {
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	TotalCost     *decimal.Decimal `json:"total_cost"`
	Profit        *decimal.Decimal `json:"profit"`
	MarginPercent *decimal.Decimal `json:"margin_percent"`
	HasCostData   bool             `json:"has_cost_data"`
	BestMonth     *MonthBucket     `json:"best_month"`
	WorstMonth    *MonthBucket     `json:"worst_month"`
	Trend         Trend            `json:"trend"`
	Months        []MonthBucket    `json:"months"`
}

const profitabilityWindowMonths = 12

// AnalyzeProfitability buckets the qualifying invoice set and the client's
// sales into the twelve calendar months ending at the reference month and
// derives totals, margin, best/worst month and the revenue trend.
func AnalyzeProfitability(now time.Time, invoices []InvoiceFact, sales []SaleFact) Profitability {
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(profitabilityWindowMonths - 1), 0)

	months := make([]MonthBucket, profitabilityWindowMonths)
	for i := range months {
		m := windowStart.AddDate(0, i, 0)
		months[i] = MonthBucket{
			Year:    m.Year(),
			Month:   m.Month(),
			Revenue: decimal.Zero,
			Cost:    decimal.Zero,
		}
	}

	for _, inv := range invoices {
		if idx, ok := bucketIndex(windowStart, inv.IssueDate); ok {
			months[idx].Revenue = months[idx].Revenue.Add(inv.Total)
		}
	}
	for _, s := range sales {
		if idx, ok := bucketIndex(windowStart, s.SaleDate); ok {
			months[idx].Cost = months[idx].Cost.Add(s.Cost())
		}
	}

	totalRevenue := decimal.Zero
	totalCost := decimal.Zero
	for i := range months {
		months[i].Revenue = round2(months[i].Revenue)
		months[i].Cost = round2(months[i].Cost)
		totalRevenue = totalRevenue.Add(months[i].Revenue)
		totalCost = totalCost.Add(months[i].Cost)
	}
	totalRevenue = round2(totalRevenue)

	result := Profitability{
		TotalRevenue: totalRevenue,
		HasCostData:  len(sales) > 0,
		Trend:        classifyTrend(months),
		Months:       months,
	}

	// Having no sales means cost is unknown, not zero. Only a client with
	// at least one sale record gets cost, profit and margin figures.
	if result.HasCostData {
		tc := round2(totalCost)
		profit := round2(totalRevenue.Sub(tc))
		result.TotalCost = &tc
		result.Profit = &profit
		if totalRevenue.IsPositive() {
			margin := round2(profit.Div(totalRevenue).Mul(decimal.NewFromInt(100)))
			result.MarginPercent = &margin
		}
	}

	result.BestMonth, result.WorstMonth = pickBestWorst(months)
	return result
}

// bucketIndex maps a date to its month offset within the window
func bucketIndex(windowStart, date time.Time) (int, bool) {
	idx := (date.Year()-windowStart.Year())*12 + int(date.Month()) - int(windowStart.Month())
	if idx < 0 || idx >= profitabilityWindowMonths {
		return 0, false
	}
	return idx, true
}

// pickBestWorst selects best and worst months among those with revenue.
// With a single active month only best is reported; the same bucket must
// not show up twice.
func pickBestWorst(months []MonthBucket) (*MonthBucket, *MonthBucket) {
	var best, worst *MonthBucket
	active := 0
	for i := range months {
		if !months[i].Revenue.IsPositive() {
			continue
		}
		active++
		if best == nil || months[i].Revenue.GreaterThan(best.Revenue) {
			b := months[i]
			best = &b
		}
		if worst == nil || months[i].Revenue.LessThan(worst.Revenue) {
			w := months[i]
			worst = &w
		}
	}
	if active < 2 {
		worst = nil
	}
	return best, worst
}

// classifyTrend compares mean revenue of the last three buckets against
// the three before them. A previous average of zero is either stable
// (nothing recent either) or up (activity started).
func classifyTrend(months []MonthBucket) Trend {
	if len(months) < 6 {
		return TrendStable
	}

	n := len(months)
	recent := meanRevenue(months[n-3:])
	previous := meanRevenue(months[n-6 : n-3])

	if previous.IsZero() {
		if recent.IsZero() {
			return TrendStable
		}
		return TrendUp
	}

	change, _ := recent.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Float64()
	switch {
	case change > 5:
		return TrendUp
	case change < -5:
		return TrendDown
	default:
		return TrendStable
	}
}

func meanRevenue(months []MonthBucket) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range months {
		sum = sum.Add(m.Revenue)
	}
	return sum.Div(decimal.NewFromInt(int64(len(months))))
}
