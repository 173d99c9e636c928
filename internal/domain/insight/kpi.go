package insight

import (
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// FinancialKPIs is the headline financial summary for one client.
// Profitability is nil when the client has no sale records: absence of
// cost data is not the same as zero cost.
type FinancialKPIs struct {
	TotalRevenue   decimal.Decimal  `json:"total_revenue"`
	RevenueYTD     decimal.Decimal  `json:"revenue_ytd"`
	Pending        decimal.Decimal  `json:"pending"`
	Overdue        decimal.Decimal  `json:"overdue"`
	AvgPaymentDays float64          `json:"avg_payment_days"`
	Profitability  *decimal.Decimal `json:"profitability"`
}

// ComputeKPIs aggregates the reporting invoice set into the client's
// financial KPIs. The invoice slice must already be the qualifying set
// (CUSTOMER type, non-draft, non-cancelled, tenant scoped); sales are
// needed only for the profitability figure. A client with no invoices
// yields an all-zero record with nil profitability.
func ComputeKPIs(now time.Time, invoices []InvoiceFact, sales []SaleFact) FinancialKPIs {
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	totalRevenue := decimal.Zero
	revenueYTD := decimal.Zero
	pending := decimal.Zero
	overdue := decimal.Zero
	paymentDays := 0.0
	paidCount := 0

	for _, inv := range invoices {
		totalRevenue = totalRevenue.Add(inv.Total)
		if !inv.IssueDate.Before(yearStart) {
			revenueYTD = revenueYTD.Add(inv.Total)
		}
		if inv.Status != billing.InvoiceStatusPaid {
			pending = pending.Add(inv.Outstanding())
			if inv.DueDate.Before(now) {
				overdue = overdue.Add(inv.Outstanding())
			}
		}
		if inv.IsPaid() {
			paymentDays += daysBetween(inv.IssueDate, *inv.PaidAt)
			paidCount++
		}
	}

	avgPaymentDays := 0.0
	if paidCount > 0 {
		avgPaymentDays = paymentDays / float64(paidCount)
	}

	kpis := FinancialKPIs{
		TotalRevenue:   round2(totalRevenue),
		RevenueYTD:     round2(revenueYTD),
		Pending:        round2(pending),
		Overdue:        round2(overdue),
		AvgPaymentDays: avgPaymentDays,
	}

	// Profitability needs at least one sale: the cost proxy is
	// sale.total - sale.price summed over linked sales.
	if len(sales) > 0 {
		cost := decimal.Zero
		for _, s := range sales {
			cost = cost.Add(s.Total.Sub(s.Price))
		}
		p := round2(totalRevenue.Sub(cost))
		kpis.Profitability = &p
	}

	return kpis
}
