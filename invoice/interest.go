/*
interest.go - Statutory interest accrual (Section 16, MSMED Act 2006)

FORMULA:
  Annual Rate = 3 x RBI bank rate = 3 x 6.5% = 19.5% per year
  Daily Rate  = Annual Rate / 365
  Interest    = Principal x Daily Rate x Days Overdue

Interest is simple and linear in days overdue. No compounding, ever.

ROUNDING:
  Monetary results round to 2 decimal places (paise) with round half away
  from zero, which is what decimal.Round does. Tests pin this mode because
  it affects TotalDue by fractions of a paisa.
*/
package invoice

import "github.com/shopspring/decimal"

var (
	// bankRate is the RBI bank rate: 6.5% per year. Update if RBI revises it.
	bankRate = decimal.New(65, -3)

	// interestMultiplier is the statutory 3x factor of Section 16.
	interestMultiplier = decimal.NewFromInt(3)

	// AnnualRate is the penal interest rate: 19.5% per year.
	AnnualRate = bankRate.Mul(interestMultiplier)

	daysPerYear = decimal.NewFromInt(365)
)

// DailyRate returns the per-day penal rate (AnnualRate / 365).
func DailyRate() decimal.Decimal {
	return AnnualRate.Div(daysPerYear)
}

// Interest is the accrual result for one invoice at one day count.
type Interest struct {
	Accrued  decimal.Decimal
	TotalDue decimal.Decimal
}

// AccrueInterest computes statutory simple interest for the given number
// of overdue days. When the invoice is not overdue the accrued interest is
// exactly zero and TotalDue equals the principal, unrounded.
func AccrueInterest(principal decimal.Decimal, daysOverdue int) Interest {
	if daysOverdue <= 0 {
		return Interest{Accrued: decimal.Zero, TotalDue: principal}
	}

	days := decimal.NewFromInt(int64(daysOverdue))
	accrued := principal.Mul(AnnualRate).Mul(days).Div(daysPerYear).Round(2)

	return Interest{
		Accrued:  accrued,
		TotalDue: principal.Add(accrued).Round(2),
	}
}
