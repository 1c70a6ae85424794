/*
scheduler.go - Daily notification trigger sweep

PURPOSE:
  Periodically scans the invoice portfolio, evaluates notification
  triggers against today's date, dispatches the due notifications, and
  records each delivery in the invoice's notice log.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Triggers fire on exact overdue days (1, 15, 22), so the sweep must
    run at least once per calendar day
  - The notice log doubles as the duplicate guard: a template already
    logged for an invoice is never dispatched again, even if the sweep
    runs multiple times a day or a notice was recorded manually
  - Paid invoices never produce triggers

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 24 hours)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewTriggerScheduler(store, sender, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - invoice/triggers.go: Trigger evaluation
  - notify: Template rendering and delivery
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rohinth-KR/DigitalVakeel/invoice"
	"github.com/Rohinth-KR/DigitalVakeel/notify"
)

// TriggerScheduler runs the daily notification sweep.
type TriggerScheduler struct {
	Store         invoice.Store
	Sender        notify.Sender
	Log           zerolog.Logger
	CheckInterval time.Duration
	Enabled       bool

	// Now supplies "today" for trigger evaluation. Overridable in tests.
	Now func() invoice.Date

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewTriggerScheduler creates a new scheduler.
func NewTriggerScheduler(store invoice.Store, sender notify.Sender, logger zerolog.Logger) *TriggerScheduler {
	return &TriggerScheduler{
		Store:         store,
		Sender:        sender,
		Log:           logger,
		CheckInterval: 24 * time.Hour,
		Enabled:       true,
		Now:           invoice.Today,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ts *TriggerScheduler) Start() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.Enabled {
		ts.Log.Info().Msg("trigger scheduler disabled, not starting")
		return
	}

	ts.ticker = time.NewTicker(ts.CheckInterval)
	ts.wg.Add(1)

	go ts.run()

	ts.Log.Info().Dur("check_interval", ts.CheckInterval).Msg("trigger scheduler started")
}

// Stop stops the scheduler.
func (ts *TriggerScheduler) Stop() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.ticker != nil {
		ts.ticker.Stop()
		close(ts.stop)
		ts.wg.Wait()
		ts.Log.Info().Msg("trigger scheduler stopped")
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (ts *TriggerScheduler) RunNow() {
	ts.checkAndProcess()
}

func (ts *TriggerScheduler) run() {
	defer ts.wg.Done()

	// Sweep immediately on start
	ts.checkAndProcess()

	for {
		select {
		case <-ts.ticker.C:
			ts.checkAndProcess()
		case <-ts.stop:
			return
		}
	}
}

func (ts *TriggerScheduler) checkAndProcess() {
	ctx := context.Background()
	today := ts.Now()

	records, err := ts.Store.List(ctx)
	if err != nil {
		ts.Log.Error().Err(err).Msg("sweep: listing invoices")
		return
	}

	sentCount := 0
	skippedCount := 0

	for _, rec := range records {
		derived := invoice.Recompute(rec.Facts, rec.Payment, today)
		triggers := invoice.CheckTriggers(rec.Facts, rec.Payment, derived.DaysOverdue)
		if len(triggers) == 0 {
			continue
		}

		notices, err := ts.Store.ListNotices(ctx, rec.ID)
		if err != nil {
			ts.Log.Error().Err(err).Str("invoice_id", rec.ID).Msg("sweep: loading notice log")
			continue
		}
		alreadySent := make(map[int]bool, len(notices))
		for _, n := range notices {
			alreadySent[n.TemplateNo] = true
		}

		for _, t := range triggers {
			if alreadySent[t.TemplateNo] {
				skippedCount++
				continue
			}

			msg := notify.Render(t, rec, derived)
			if err := ts.Sender.Send(ctx, msg); err != nil {
				ts.Log.Error().Err(err).
					Str("invoice_id", rec.ID).
					Int("template_no", t.TemplateNo).
					Msg("sweep: delivery failed")
				continue
			}

			notice := invoice.Notice{
				InvoiceID:  rec.ID,
				TemplateNo: t.TemplateNo,
				Channel:    t.Channel,
				SentTo:     t.Recipient,
				SentAt:     time.Now().UTC(),
			}
			if err := ts.Store.AppendNotice(ctx, notice); err != nil {
				ts.Log.Error().Err(err).
					Str("invoice_id", rec.ID).
					Int("template_no", t.TemplateNo).
					Msg("sweep: recording notice")
				continue
			}

			ts.Log.Info().
				Str("invoice_id", rec.ID).
				Int("template_no", t.TemplateNo).
				Str("channel", string(t.Channel)).
				Int("days_overdue", derived.DaysOverdue).
				Msg("sweep: notification sent")
			sentCount++
		}
	}

	if sentCount > 0 || skippedCount > 0 {
		ts.Log.Info().
			Int("sent", sentCount).
			Int("skipped", skippedCount).
			Msg("sweep completed")
	}
}
