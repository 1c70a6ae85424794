package invoice

import "github.com/shopspring/decimal"

// Recompute is the single entry point used by every caller: it derives the
// full lifecycle state for one invoice as of the given date.
//
// Paid invoices short-circuit: the day counters report zero and interest
// is zero no matter how much time has passed since payment. Frozen means
// future elapsed time is ignored, not that a pre-payment snapshot is
// preserved.
//
// Recompute is pure and idempotent. Identical inputs yield bit-identical
// outputs, so it is always safe to call on every read instead of trusting
// a persisted derived snapshot.
func Recompute(facts Facts, payment PaymentState, today Date) DerivedState {
	if payment.Paid {
		return DerivedState{
			DueDate:         facts.InvoiceDate.AddDays(PaymentWindowDays),
			DaysOverdue:     0,
			DaysUntilDue:    0,
			Status:          StatusPaid,
			InterestAccrued: decimal.Zero,
			TotalDue:        facts.Principal,
		}
	}

	dates := ResolveDates(facts.InvoiceDate, today)
	status := ClassifyStatus(dates.DaysOverdue, dates.DaysUntilDue, payment.Paid)
	interest := AccrueInterest(facts.Principal, dates.DaysOverdue)

	return DerivedState{
		DueDate:         dates.DueDate,
		DaysOverdue:     dates.DaysOverdue,
		DaysUntilDue:    dates.DaysUntilDue,
		Status:          status,
		InterestAccrued: interest.Accrued,
		TotalDue:        interest.TotalDue,
	}
}
