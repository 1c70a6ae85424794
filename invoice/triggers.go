/*
triggers.go - Notification trigger determination

PURPOSE:
  Decides, for the current days-overdue value, which notification
  templates should fire TODAY. Milestones use exact day equality, not
  thresholds: a caller that skips the sweep on the milestone day misses
  that trigger permanently, because days overdue keeps climbing past it.
  Idempotent re-fire suppression belongs to the notification log, owned
  by the caller, never to this function.

MILESTONES (days overdue):
   1  -> template 1, WhatsApp soft reminder        (invoice day 46)
  15  -> template 2, formal legal notice email     (invoice day 60)
  22  -> template 3, final escalation email        (invoice day 67)
*/
package invoice

import "fmt"

// Channel is the delivery channel for a notification.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

// Notification templates. The numbers match the legal template documents.
const (
	TemplateSoftReminder = 1
	TemplateLegalNotice  = 2
	TemplateFinalNotice  = 3
)

// Milestones in days overdue.
const (
	reminderOverdueDay   = 1
	noticeOverdueDay     = overdueNoticeDays
	escalationOverdueDay = overdueEscalationDays
)

// Trigger is a decision that one notification template should be sent
// today. TriggerDay is the absolute invoice age (window + overdue days).
type Trigger struct {
	TriggerDay int
	TemplateNo int
	Channel    Channel
	Recipient  string
	Subject    string
}

// CheckTriggers returns the triggers that fire today for the given facts
// and day count. Paid invoices never fire, not even retroactively. The
// recipient is the buyer contact and may be empty; emitting the trigger is
// the engine's decision, delivering it is not.
//
// The result is a set: with milestones of 1/15/22 at most one entry can
// fire per call, but callers must not rely on that.
func CheckTriggers(facts Facts, payment PaymentState, daysOverdue int) []Trigger {
	if payment.Paid {
		return nil
	}

	var triggers []Trigger

	if daysOverdue == reminderOverdueDay {
		triggers = append(triggers, Trigger{
			TriggerDay: PaymentWindowDays + reminderOverdueDay,
			TemplateNo: TemplateSoftReminder,
			Channel:    ChannelWhatsApp,
			Recipient:  facts.BuyerContact,
			Subject:    "",
		})
	}

	if daysOverdue == noticeOverdueDay {
		triggers = append(triggers, Trigger{
			TriggerDay: PaymentWindowDays + noticeOverdueDay,
			TemplateNo: TemplateLegalNotice,
			Channel:    ChannelEmail,
			Recipient:  facts.BuyerContact,
			Subject:    fmt.Sprintf("FORMAL LEGAL NOTICE - MSMED Act 2006 - Invoice #%s", facts.InvoiceNumber),
		})
	}

	if daysOverdue == escalationOverdueDay {
		triggers = append(triggers, Trigger{
			TriggerDay: PaymentWindowDays + escalationOverdueDay,
			TemplateNo: TemplateFinalNotice,
			Channel:    ChannelEmail,
			Recipient:  facts.BuyerContact,
			Subject:    fmt.Sprintf("FINAL NOTICE - MSME SAMADHAAN FILING IMMINENT - Invoice #%s", facts.InvoiceNumber),
		})
	}

	return triggers
}
