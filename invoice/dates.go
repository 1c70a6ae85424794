package invoice

// =============================================================================
// DATE RESOLUTION - Invoice date + today -> window position
// =============================================================================

// DateResolution is the invoice's position relative to its payment window.
// Exactly one of DaysOverdue/DaysUntilDue is nonzero, except on the due
// date itself when both are zero.
type DateResolution struct {
	DueDate      Date
	DaysOverdue  int
	DaysUntilDue int
}

// ResolveDates converts the invoice date and today into the due date and
// day counts. Calendar-day arithmetic only: no business-day skipping, no
// time-of-day sensitivity. A future invoice date is accepted; its
// DaysUntilDue is simply larger than the window.
func ResolveDates(invoiceDate, today Date) DateResolution {
	due := invoiceDate.AddDays(PaymentWindowDays)

	// Positive = overdue, negative = time left.
	diff := DaysBetween(due, today)

	return DateResolution{
		DueDate:      due,
		DaysOverdue:  max(0, diff),
		DaysUntilDue: max(0, -diff),
	}
}
