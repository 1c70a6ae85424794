package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rohinth-KR/DigitalVakeel/invoice"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(id string) invoice.Record {
	return invoice.Record{
		ID:        id,
		CreatedAt: time.Date(2025, time.February, 1, 10, 30, 0, 0, time.UTC),
		Facts: invoice.Facts{
			SellerName:     "Arjun Textiles",
			BuyerName:      "Mega-Retail Corp",
			InvoiceNumber:  "INV-2025-101",
			InvoiceDate:    invoice.NewDate(2025, time.February, 1),
			Principal:      decimal.RequireFromString("172515.50"),
			RegistrationID: "UDYAM-TN-00-0012345",
			BuyerTaxID:     "33AAACM1234F1Z5",
			BuyerContact:   "accounts@megaretail.example",
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("A3B7C2D1")
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "A3B7C2D1")
	require.NoError(t, err)

	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Facts.SellerName, got.Facts.SellerName)
	assert.Equal(t, rec.Facts.BuyerName, got.Facts.BuyerName)
	assert.Equal(t, rec.Facts.InvoiceNumber, got.Facts.InvoiceNumber)
	assert.True(t, rec.Facts.InvoiceDate.Equal(got.Facts.InvoiceDate))
	assert.True(t, rec.Facts.Principal.Equal(got.Facts.Principal), "principal must round-trip exactly")
	assert.Equal(t, rec.Facts.RegistrationID, got.Facts.RegistrationID)
	assert.Equal(t, rec.Facts.BuyerTaxID, got.Facts.BuyerTaxID)
	assert.Equal(t, rec.Facts.BuyerContact, got.Facts.BuyerContact)
	assert.False(t, got.Payment.Paid)
	assert.Nil(t, got.Payment.PaidAt)
	assert.Nil(t, got.Payment.PaidAmount)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
}

func TestGet_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "DEADBEEF")
	assert.ErrorIs(t, err, invoice.ErrNotFound)
}

func TestSave_OptionalFieldsMayBeEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("B4C8D3E2")
	rec.Facts.RegistrationID = ""
	rec.Facts.BuyerTaxID = ""
	rec.Facts.BuyerContact = ""
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "B4C8D3E2")
	require.NoError(t, err)
	assert.Empty(t, got.Facts.RegistrationID)
	assert.Empty(t, got.Facts.BuyerTaxID)
	assert.Empty(t, got.Facts.BuyerContact)
}

func TestList_OrderedByCreation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	second := testRecord("22222222")
	second.CreatedAt = second.CreatedAt.Add(time.Hour)
	require.NoError(t, store.Save(ctx, second))

	first := testRecord("11111111")
	require.NoError(t, store.Save(ctx, first))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "11111111", records[0].ID)
	assert.Equal(t, "22222222", records[1].ID)
}

func TestMarkPaid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("A3B7C2D1")
	require.NoError(t, store.Save(ctx, rec))

	paidAt := time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)
	paidAmount := decimal.RequireFromString("175000.00")

	got, err := store.MarkPaid(ctx, "A3B7C2D1", paidAt, paidAmount)
	require.NoError(t, err)

	assert.True(t, got.Payment.Paid)
	require.NotNil(t, got.Payment.PaidAt)
	assert.True(t, paidAt.Equal(*got.Payment.PaidAt))
	require.NotNil(t, got.Payment.PaidAmount)
	assert.True(t, paidAmount.Equal(*got.Payment.PaidAmount))
}

func TestMarkPaid_AlreadyPaid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord("A3B7C2D1")))

	_, err := store.MarkPaid(ctx, "A3B7C2D1", time.Now(), decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = store.MarkPaid(ctx, "A3B7C2D1", time.Now(), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, invoice.ErrAlreadyPaid)
}

func TestMarkPaid_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.MarkPaid(context.Background(), "DEADBEEF", time.Now(), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, invoice.ErrNotFound)
}

func TestMarkPaid_ConcurrentConfirmationsExactlyOneWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord("A3B7C2D1")))

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.MarkPaid(ctx, "A3B7C2D1", time.Now(), decimal.NewFromInt(100))
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, invoice.ErrAlreadyPaid)
		}
	}
	assert.Equal(t, 1, successes, "exactly one confirmation must win")
}

func TestNoticeLog_AppendOnlyOrderedBySeq(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord("A3B7C2D1")))

	base := time.Date(2025, time.March, 19, 9, 0, 0, 0, time.UTC)
	for i, template := range []int{invoice.TemplateSoftReminder, invoice.TemplateLegalNotice, invoice.TemplateFinalNotice} {
		require.NoError(t, store.AppendNotice(ctx, invoice.Notice{
			InvoiceID:  "A3B7C2D1",
			TemplateNo: template,
			Channel:    invoice.ChannelEmail,
			SentTo:     "accounts@megaretail.example",
			SentAt:     base.AddDate(0, 0, i),
		}))
	}

	notices, err := store.ListNotices(ctx, "A3B7C2D1")
	require.NoError(t, err)
	require.Len(t, notices, 3)
	assert.Equal(t, invoice.TemplateSoftReminder, notices[0].TemplateNo)
	assert.Equal(t, invoice.TemplateLegalNotice, notices[1].TemplateNo)
	assert.Equal(t, invoice.TemplateFinalNotice, notices[2].TemplateNo)
}

func TestListNotices_EmptyForUnknownInvoice(t *testing.T) {
	store := newTestStore(t)

	notices, err := store.ListNotices(context.Background(), "DEADBEEF")
	require.NoError(t, err)
	assert.Empty(t, notices)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord("A3B7C2D1")))
	require.NoError(t, store.AppendNotice(ctx, invoice.Notice{
		InvoiceID:  "A3B7C2D1",
		TemplateNo: 1,
		Channel:    invoice.ChannelWhatsApp,
		SentAt:     time.Now(),
	}))

	require.NoError(t, store.Reset(ctx))

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
