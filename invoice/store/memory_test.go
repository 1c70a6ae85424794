package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Rohinth-KR/DigitalVakeel/invoice"
	"github.com/Rohinth-KR/DigitalVakeel/invoice/store"
)

func testRecord(id string, createdAt time.Time) invoice.Record {
	return invoice.Record{
		ID:        id,
		CreatedAt: createdAt,
		Facts: invoice.Facts{
			SellerName:    "Arjun Textiles",
			BuyerName:     "Mega-Retail Corp",
			InvoiceNumber: "INV-2025-101",
			InvoiceDate:   invoice.NewDate(2025, time.February, 1),
			Principal:     decimal.NewFromInt(500000),
		},
	}
}

func TestMemory_SaveGetList(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	base := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	if err := m.Save(ctx, testRecord("22222222", base.Add(time.Hour))); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := m.Save(ctx, testRecord("11111111", base)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := m.Get(ctx, "11111111")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Facts.SellerName != "Arjun Textiles" {
		t.Errorf("unexpected record %+v", got)
	}

	if _, err := m.Get(ctx, "DEADBEEF"); !invoice.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	records, err := m.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].ID != "11111111" || records[1].ID != "22222222" {
		t.Errorf("expected creation order, got %+v", records)
	}
}

func TestMemory_MarkPaidOnce(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	if err := m.Save(ctx, testRecord("A3B7C2D1", time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.MarkPaid(ctx, "A3B7C2D1", time.Now(), decimal.NewFromInt(500000))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful transition, got %d", successes)
	}
}

func TestMemory_NoticeLogIsolation(t *testing.T) {
	// GIVEN: A notice log returned by the store
	// WHEN: The caller mutates the returned slice
	// THEN: The stored log is unaffected

	ctx := context.Background()
	m := store.NewMemory()

	n := invoice.Notice{InvoiceID: "A3B7C2D1", TemplateNo: 1, Channel: invoice.ChannelWhatsApp, SentAt: time.Now()}
	if err := m.AppendNotice(ctx, n); err != nil {
		t.Fatalf("append: %v", err)
	}

	first, _ := m.ListNotices(ctx, "A3B7C2D1")
	first[0].TemplateNo = 99

	second, _ := m.ListNotices(ctx, "A3B7C2D1")
	if second[0].TemplateNo != 1 {
		t.Errorf("stored notice was mutated through the returned slice")
	}
}
