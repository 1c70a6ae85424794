package api_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Rohinth-KR/DigitalVakeel/api"
	"github.com/Rohinth-KR/DigitalVakeel/invoice"
	memstore "github.com/Rohinth-KR/DigitalVakeel/invoice/store"
	"github.com/Rohinth-KR/DigitalVakeel/notify"
)

// fakeSender records every message it is asked to deliver.
type fakeSender struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (f *fakeSender) Send(_ context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) messages() []notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Message(nil), f.sent...)
}

func newTestScheduler(store invoice.Store, sender notify.Sender) *api.TriggerScheduler {
	scheduler := api.NewTriggerScheduler(store, sender, zerolog.Nop())
	scheduler.Now = func() invoice.Date { return fixedToday }
	return scheduler
}

func saveInvoice(t *testing.T, store invoice.Store, invoiceDate invoice.Date, paid bool) invoice.Record {
	t.Helper()

	rec := invoice.Record{
		ID:        invoice.NewInvoiceID(),
		CreatedAt: time.Now().UTC(),
		Facts: invoice.Facts{
			SellerName:    "Arjun Textiles",
			BuyerName:     "Mega-Retail Corp",
			InvoiceNumber: "INV-2025-101",
			InvoiceDate:   invoiceDate,
			Principal:     decimal.NewFromInt(500000),
			BuyerContact:  "accounts@megaretail.example",
		},
	}
	if paid {
		paidAt := time.Now().UTC()
		amount := decimal.NewFromInt(500000)
		rec.Payment = invoice.PaymentState{Paid: true, PaidAt: &paidAt, PaidAmount: &amount}
	}
	if err := store.Save(context.Background(), rec); err != nil {
		t.Fatalf("save invoice: %v", err)
	}
	return rec
}

func TestSweep_SendsMilestoneNotificationAndLogsIt(t *testing.T) {
	// GIVEN: An unpaid invoice exactly 15 days overdue
	// WHEN: The sweep runs
	// THEN: The legal notice email is sent once and recorded in the notice log

	store := memstore.NewMemory()
	sender := &fakeSender{}
	rec := saveInvoice(t, store, fixedToday.AddDays(-60), false)

	newTestScheduler(store, sender).RunNow()

	sent := sender.messages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].TemplateNo != invoice.TemplateLegalNotice {
		t.Errorf("expected template 2, got %d", sent[0].TemplateNo)
	}
	if sent[0].InvoiceID != rec.ID {
		t.Errorf("expected invoice %s, got %s", rec.ID, sent[0].InvoiceID)
	}
	if sent[0].Body == "" || sent[0].Subject == "" {
		t.Errorf("expected rendered subject and body, got %+v", sent[0])
	}

	notices, err := store.ListNotices(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("list notices: %v", err)
	}
	if len(notices) != 1 || notices[0].TemplateNo != invoice.TemplateLegalNotice {
		t.Fatalf("expected 1 logged notice for template 2, got %+v", notices)
	}
}

func TestSweep_NoticeLogSuppressesRepeats(t *testing.T) {
	// GIVEN: A milestone-day invoice swept once already
	// WHEN: The sweep runs again the same day
	// THEN: No duplicate delivery

	store := memstore.NewMemory()
	sender := &fakeSender{}
	saveInvoice(t, store, fixedToday.AddDays(-60), false)

	scheduler := newTestScheduler(store, sender)
	scheduler.RunNow()
	scheduler.RunNow()

	if got := len(sender.messages()); got != 1 {
		t.Fatalf("expected 1 message after two sweeps, got %d", got)
	}
}

func TestSweep_ManuallyLoggedNoticeSuppressesDelivery(t *testing.T) {
	// GIVEN: A milestone-day invoice whose template was already recorded
	//        manually (sent out of band)
	// WHEN: The sweep runs
	// THEN: Nothing is delivered

	store := memstore.NewMemory()
	sender := &fakeSender{}
	rec := saveInvoice(t, store, fixedToday.AddDays(-60), false)

	err := store.AppendNotice(context.Background(), invoice.Notice{
		InvoiceID:  rec.ID,
		TemplateNo: invoice.TemplateLegalNotice,
		Channel:    invoice.ChannelEmail,
		SentTo:     "accounts@megaretail.example",
		SentAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("append notice: %v", err)
	}

	newTestScheduler(store, sender).RunNow()

	if got := len(sender.messages()); got != 0 {
		t.Fatalf("expected no messages, got %d", got)
	}
}

func TestSweep_SkipsPaidAndNonMilestoneInvoices(t *testing.T) {
	// GIVEN: A paid milestone-day invoice and an unpaid non-milestone invoice
	// WHEN: The sweep runs
	// THEN: Nothing is delivered

	store := memstore.NewMemory()
	sender := &fakeSender{}
	saveInvoice(t, store, fixedToday.AddDays(-60), true)  // 15 days overdue but paid
	saveInvoice(t, store, fixedToday.AddDays(-50), false) // 5 days overdue, no milestone

	newTestScheduler(store, sender).RunNow()

	if got := len(sender.messages()); got != 0 {
		t.Fatalf("expected no messages, got %d", got)
	}
}

func TestScheduler_StartAndStop(t *testing.T) {
	// GIVEN: A started scheduler with a milestone-day invoice
	// WHEN: Stopping it
	// THEN: The initial sweep ran and Stop returns cleanly

	store := memstore.NewMemory()
	sender := &fakeSender{}
	saveInvoice(t, store, fixedToday.AddDays(-46), false) // 1 day overdue

	scheduler := newTestScheduler(store, sender)
	scheduler.CheckInterval = time.Hour

	scheduler.Start()
	defer scheduler.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for len(sender.messages()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("initial sweep did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if sender.messages()[0].Channel != invoice.ChannelWhatsApp {
		t.Errorf("expected whatsapp soft reminder, got %+v", sender.messages()[0])
	}
}
