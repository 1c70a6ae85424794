// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Rohinth-KR/DigitalVakeel/invoice"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[string]invoice.Record
	notices map[string][]invoice.Notice
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]invoice.Record),
		notices: make(map[string][]invoice.Notice),
	}
}

func (m *Memory) Save(_ context.Context, rec invoice.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*invoice.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) List(_ context.Context) ([]invoice.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]invoice.Record, 0, len(m.records))
	for _, rec := range m.records {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// MarkPaid performs the one-shot paid transition under the store lock, so
// concurrent confirmations for the same id cannot both succeed.
func (m *Memory) MarkPaid(_ context.Context, id string, paidAt time.Time, paidAmount decimal.Decimal) (*invoice.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}
	if rec.Payment.Paid {
		return nil, invoice.ErrAlreadyPaid
	}

	rec.Payment = invoice.PaymentState{
		Paid:       true,
		PaidAt:     &paidAt,
		PaidAmount: &paidAmount,
	}
	m.records[id] = rec
	return &rec, nil
}

func (m *Memory) AppendNotice(_ context.Context, n invoice.Notice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices[n.InvoiceID] = append(m.notices[n.InvoiceID], n)
	return nil
}

func (m *Memory) ListNotices(_ context.Context, invoiceID string) ([]invoice.Notice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]invoice.Notice, len(m.notices[invoiceID]))
	copy(result, m.notices[invoiceID])
	return result, nil
}
