package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes messages to the structured log instead of delivering
// them. Used as the development sink for every channel and as the
// permanent sink for WhatsApp.
type LogSender struct {
	Logger zerolog.Logger
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info().
		Str("invoice_id", msg.InvoiceID).
		Int("template_no", msg.TemplateNo).
		Str("channel", string(msg.Channel)).
		Str("recipient", msg.Recipient).
		Str("subject", msg.Subject).
		Msg("notification dispatched to log sink")
	return nil
}
