/*
Package notify delivers the notifications the lifecycle engine decides on.

PURPOSE:
  The engine decides THAT a template should be sent today and to whom;
  this package decides HOW. It renders the three statutory templates and
  dispatches them by channel. Delivery results are recorded in the
  invoice's append-only notice log by the caller (the trigger sweep),
  which is also where duplicate suppression lives.

SENDERS:
  - LogSender: Writes the message to the structured log. Default for all
    channels in development, and the permanent WhatsApp sink (WhatsApp
    transport is out of scope).
  - SESSender: AWS SESv2 email delivery for the legal notice templates.
  - Router:    Dispatches by channel.
*/
package notify

import (
	"context"
	"fmt"

	"github.com/Rohinth-KR/DigitalVakeel/invoice"
)

// Message is one rendered notification ready for delivery.
type Message struct {
	InvoiceID  string
	TemplateNo int
	Channel    invoice.Channel
	Recipient  string
	Subject    string
	Body       string
}

// Sender delivers a rendered message over some transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render builds the deliverable message for one trigger. The template
// bodies follow the statutory escalation sequence: soft reminder, formal
// legal notice, final warning before a Samadhaan portal filing.
func Render(t invoice.Trigger, rec invoice.Record, derived invoice.DerivedState) Message {
	var body string
	switch t.TemplateNo {
	case invoice.TemplateSoftReminder:
		body = fmt.Sprintf(
			"Gentle reminder from %s: invoice %s for Rs. %s was due on %s and is now %d day(s) past the 45-day window of the MSMED Act 2006. Interest of Rs. %s has started to accrue. Total payable today: Rs. %s. Kindly arrange payment at the earliest.",
			rec.Facts.SellerName, rec.Facts.InvoiceNumber, rec.Facts.Principal.StringFixed(2),
			derived.DueDate, derived.DaysOverdue,
			derived.InterestAccrued.StringFixed(2), derived.TotalDue.StringFixed(2),
		)
	case invoice.TemplateLegalNotice:
		body = fmt.Sprintf(
			"This is a formal notice under Section 15 and Section 16 of the MSMED Act 2006. Invoice %s issued by %s to %s for Rs. %s became due on %s and remains unpaid for %d days. Statutory interest at three times the RBI bank rate accrues daily and currently stands at Rs. %s, bringing the total payable to Rs. %s. Failing settlement within 7 days, the seller will initiate proceedings before the Micro and Small Enterprises Facilitation Council.",
			rec.Facts.InvoiceNumber, rec.Facts.SellerName, rec.Facts.BuyerName,
			rec.Facts.Principal.StringFixed(2), derived.DueDate, derived.DaysOverdue,
			derived.InterestAccrued.StringFixed(2), derived.TotalDue.StringFixed(2),
		)
	case invoice.TemplateFinalNotice:
		body = fmt.Sprintf(
			"FINAL WARNING. Invoice %s remains unpaid %d days past its statutory due date of %s despite the earlier formal notice. The total payable including accrued interest is Rs. %s. A reference will now be filed on the MSME Samadhaan portal against %s without further communication.",
			rec.Facts.InvoiceNumber, derived.DaysOverdue, derived.DueDate,
			derived.TotalDue.StringFixed(2), rec.Facts.BuyerName,
		)
	}

	return Message{
		InvoiceID:  rec.ID,
		TemplateNo: t.TemplateNo,
		Channel:    t.Channel,
		Recipient:  t.Recipient,
		Subject:    t.Subject,
		Body:       body,
	}
}

// Router dispatches messages to a per-channel sender.
type Router struct {
	Email    Sender
	WhatsApp Sender
}

func (r *Router) Send(ctx context.Context, msg Message) error {
	switch msg.Channel {
	case invoice.ChannelEmail:
		return r.Email.Send(ctx, msg)
	case invoice.ChannelWhatsApp:
		return r.WhatsApp.Send(ctx, msg)
	default:
		return fmt.Errorf("unknown channel %q", msg.Channel)
	}
}
