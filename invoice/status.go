package invoice

// Status thresholds in days overdue. The notice and escalation stages
// correspond to invoice ages of 60 and 67 days (window + offset).
const (
	overdueEscalationDays = 22
	overdueNoticeDays     = 15
	dueSoonWindowDays     = 5
)

// ClassifyStatus maps the day counts and paid flag onto exactly one status.
// Highest-priority match wins, evaluated in fixed order. The classifier is
// stateless: status "transitions" are an emergent property of recomputing
// with an advancing today, not a stored state change.
//
// Progression over elapsing time while unpaid:
//
//	ACTIVE -> DUE_SOON -> DUE_TODAY -> OVERDUE -> NOTICE_SENT -> ESCALATION
//
// Any state transitions to PAID on the payment event; PAID is absorbing.
func ClassifyStatus(daysOverdue, daysUntilDue int, paid bool) Status {
	switch {
	case paid:
		return StatusPaid
	case daysOverdue >= overdueEscalationDays:
		return StatusEscalation
	case daysOverdue >= overdueNoticeDays:
		return StatusNoticeSent
	case daysOverdue >= 1:
		return StatusOverdue
	case daysUntilDue == 0:
		return StatusDueToday
	case daysUntilDue <= dueSoonWindowDays:
		return StatusDueSoon
	default:
		return StatusActive
	}
}
