package insight

import (
	"fmt"
	"time"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/shopspring/decimal"
)

// RiskInput holds the aggregates the scoring rules evaluate. It is built
// from the qualifying invoice set by BuildRiskInput and carries no
// reference to raw rows, which keeps ScoreRisk a pure function.
type RiskInput struct {
	InvoicesSent     int
	InvoicesPaid     int
	OverdueCount     int
	OverdueAmount    decimal.Decimal
	PendingAmount    decimal.Decimal
	AvgPaymentDays   float64
	AvgDelayDays     float64
	WorstDelayDays   float64
	LateCount        int
	LateSharePercent float64
}

// RiskAssessment is the scored classification of a client's payment
// behavior. Reasons preserve rule evaluation order.
type RiskAssessment struct {
	Score          int             `json:"score"`
	Level          crm.RiskLevel   `json:"level"`
	Label          string          `json:"label"`
	AvgDelayDays   float64         `json:"avg_delay_days"`
	WorstDelayDays float64         `json:"worst_delay_days"`
	InvoicesSent   int             `json:"invoices_sent"`
	InvoicesPaid   int             `json:"invoices_paid"`
	OverdueCount   int             `json:"overdue_count"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
	AvgPaymentDays float64         `json:"avg_payment_days"`
	Reasons        []string        `json:"reasons"`
}

const riskBaseScore = 10

// riskRule is one entry in the ordered scoring table. applies gates the
// rule; delta and reason are only consulted when it fires. Tiered rules
// (exclusive else-if bands in the old implementation) resolve their tier
// inside delta and reason.
type riskRule struct {
	applies func(in RiskInput) bool
	delta   func(in RiskInput) int
	reason  func(in RiskInput) string
}

// riskRules is evaluated in order; deltas are additive on the base score.
var riskRules = []riskRule{
	{
		// Overdue invoices: +10 each, capped at +25.
		applies: func(in RiskInput) bool { return in.OverdueCount > 0 },
		delta: func(in RiskInput) int {
			return min(25, in.OverdueCount*10)
		},
		reason: func(in RiskInput) string {
			return fmt.Sprintf("%d overdue invoice(s) totalling %s", in.OverdueCount, in.OverdueAmount.StringFixed(2))
		},
	},
	{
		// Majority of the pending amount already past due.
		applies: func(in RiskInput) bool {
			if !in.PendingAmount.IsPositive() {
				return false
			}
			half := in.PendingAmount.Mul(decimal.NewFromFloat(0.5))
			return in.OverdueAmount.GreaterThan(half)
		},
		delta:  func(RiskInput) int { return 10 },
		reason: func(RiskInput) string { return "more than 50% of pending is overdue" },
	},
	{
		// Average delay tiers, highest matching only.
		applies: func(in RiskInput) bool { return in.AvgDelayDays > 7 },
		delta: func(in RiskInput) int {
			switch {
			case in.AvgDelayDays > 30:
				return 15
			case in.AvgDelayDays > 15:
				return 8
			default:
				return 4
			}
		},
		reason: func(in RiskInput) string {
			return fmt.Sprintf("average payment delay of %.0f days", in.AvgDelayDays)
		},
	},
	{
		// Worst single delay tiers.
		applies: func(in RiskInput) bool { return in.WorstDelayDays > 30 },
		delta: func(in RiskInput) int {
			if in.WorstDelayDays > 60 {
				return 10
			}
			return 5
		},
		reason: func(in RiskInput) string {
			return fmt.Sprintf("worst payment delay of %.0f days", in.WorstDelayDays)
		},
	},
	{
		// Share of paid invoices settled after their due date.
		applies: func(in RiskInput) bool { return in.LateSharePercent > 25 },
		delta: func(in RiskInput) int {
			if in.LateSharePercent > 50 {
				return 12
			}
			return 6
		},
		reason: func(in RiskInput) string {
			return fmt.Sprintf("%.0f%% of paid invoices were settled late", in.LateSharePercent)
		},
	},
	{
		// Slow payment overall, measured issue date to payment.
		applies: func(in RiskInput) bool { return in.AvgPaymentDays > 30 },
		delta: func(in RiskInput) int {
			if in.AvgPaymentDays > 45 {
				return 10
			}
			return 5
		},
		reason: func(in RiskInput) string {
			return fmt.Sprintf("average time to payment of %.0f days", in.AvgPaymentDays)
		},
	},
	{
		// Positive signal: consistent on-time payment history.
		applies: func(in RiskInput) bool { return in.LateCount == 0 && in.InvoicesPaid >= 3 },
		delta:   func(RiskInput) int { return -10 },
		reason:  func(RiskInput) string { return "clean history" },
	},
	{
		// Positive signal: everything billed has been paid.
		applies: func(in RiskInput) bool {
			return in.InvoicesPaid > 0 && in.InvoicesPaid == in.InvoicesSent && in.OverdueCount == 0
		},
		delta:  func(RiskInput) int { return -5 },
		reason: func(RiskInput) string { return "100% paid" },
	},
}

// BuildRiskInput computes the scoring aggregates from the qualifying
// invoice set. Delay metrics consider only invoices that were actually
// paid: an unpaid overdue invoice contributes to the overdue counters
// but never to delay averages.
func BuildRiskInput(now time.Time, invoices []InvoiceFact) RiskInput {
	in := RiskInput{
		InvoicesSent:  len(invoices),
		OverdueAmount: decimal.Zero,
		PendingAmount: decimal.Zero,
	}

	paymentDays := 0.0
	delayDays := 0.0

	for _, inv := range invoices {
		if inv.IsPaid() {
			in.InvoicesPaid++
			paymentDays += daysBetween(inv.IssueDate, *inv.PaidAt)

			if delay := daysBetween(inv.DueDate, *inv.PaidAt); delay > 0 {
				in.LateCount++
				delayDays += delay
				if delay > in.WorstDelayDays {
					in.WorstDelayDays = delay
				}
			}
			continue
		}

		in.PendingAmount = in.PendingAmount.Add(inv.Outstanding())
		if inv.DueDate.Before(now) {
			in.OverdueCount++
			in.OverdueAmount = in.OverdueAmount.Add(inv.Outstanding())
		}
	}

	if in.InvoicesPaid > 0 {
		in.AvgPaymentDays = paymentDays / float64(in.InvoicesPaid)
		in.LateSharePercent = float64(in.LateCount) / float64(in.InvoicesPaid) * 100
	}
	if in.LateCount > 0 {
		in.AvgDelayDays = delayDays / float64(in.LateCount)
	}

	return in
}

// ScoreRisk applies the ordered rule table to the aggregates and returns
// the clamped 0-100 assessment. A client with no billing history short
// circuits to score zero.
func ScoreRisk(in RiskInput) RiskAssessment {
	if in.InvoicesSent == 0 {
		return RiskAssessment{
			Score:         0,
			Level:         crm.RiskLevelLow,
			Label:         riskLabel(crm.RiskLevelLow),
			OverdueAmount: decimal.Zero,
			PendingAmount: decimal.Zero,
			Reasons:       []string{"no billing history"},
		}
	}

	score := riskBaseScore
	reasons := make([]string, 0, len(riskRules))
	for _, rule := range riskRules {
		if !rule.applies(in) {
			continue
		}
		score += rule.delta(in)
		reasons = append(reasons, rule.reason(in))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	level := riskLevelForScore(score)
	return RiskAssessment{
		Score:          score,
		Level:          level,
		Label:          riskLabel(level),
		AvgDelayDays:   in.AvgDelayDays,
		WorstDelayDays: in.WorstDelayDays,
		InvoicesSent:   in.InvoicesSent,
		InvoicesPaid:   in.InvoicesPaid,
		OverdueCount:   in.OverdueCount,
		OverdueAmount:  round2(in.OverdueAmount),
		PendingAmount:  round2(in.PendingAmount),
		AvgPaymentDays: in.AvgPaymentDays,
		Reasons:        reasons,
	}
}

// riskLevelForScore maps a clamped score to its 3-level classification
func riskLevelForScore(score int) crm.RiskLevel {
	switch {
	case score <= 30:
		return crm.RiskLevelLow
	case score <= 65:
		return crm.RiskLevelMedium
	default:
		return crm.RiskLevelHigh
	}
}

func riskLabel(level crm.RiskLevel) string {
	switch level {
	case crm.RiskLevelLow:
		return "Low risk"
	case crm.RiskLevelMedium:
		return "Medium risk"
	default:
		return "High risk"
	}
}
