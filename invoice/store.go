/*
store.go - Persistence interface for invoice records and the notice log

PURPOSE:
  Defines the interface between the lifecycle engine's callers and the
  database. The engine itself never touches storage; the orchestration
  layer loads a Record, calls Recompute, and serves the result.

CONTRACT:
  - Get/List return raw facts + payment state. Callers MUST recompute
    derived values; anything a store might cache is display-only.
  - MarkPaid is the ONLY mutation of an existing record and implementations
    must serialize it per id: two concurrent payment confirmations for the
    same invoice must not both succeed.
  - The notice log is append-only. Corrections do not exist; a sent
    notification happened.

IMPLEMENTATIONS:
  - invoice/store/memory.go: In-memory, for tests and development
  - store/sqlite/sqlite.go:  Production SQLite
*/
package invoice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store handles persistence of invoice records and their notice logs.
type Store interface {
	// Save persists a new invoice record.
	Save(ctx context.Context, rec Record) error

	// Get returns one record by id. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns all records, ordered by creation time.
	List(ctx context.Context) ([]Record, error)

	// MarkPaid transitions a record to paid exactly once and returns the
	// updated record. Returns ErrNotFound when absent and ErrAlreadyPaid
	// when the transition already happened. The read-modify-write is
	// serialized per id.
	MarkPaid(ctx context.Context, id string, paidAt time.Time, paidAmount decimal.Decimal) (*Record, error)

	// AppendNotice appends a sent-notification entry to the invoice's log.
	AppendNotice(ctx context.Context, n Notice) error

	// ListNotices returns the notice log for one invoice, oldest first.
	ListNotices(ctx context.Context, invoiceID string) ([]Notice, error)
}

// NewInvoiceID returns an 8-character uppercase identifier, the key format
// used throughout the system (e.g. "A3B7C2D1").
func NewInvoiceID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
