/*
Package sqlite provides a SQLite-backed implementation of invoice.Store.

PURPOSE:
  Persists invoice records and the append-only notice log. In production
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

WHAT IS STORED:
  Only the authoritative state: facts and payment state. Derived fields
  (due date, status, interest, totals) are never persisted; every read
  path recomputes them from facts + payment + today. This makes drift
  between stored and actual values structurally impossible.

PAID TRANSITION:
  MarkPaid runs a conditional UPDATE ... WHERE paid = 0 inside a
  transaction, guarded by the store mutex. Two concurrent payment
  confirmations for the same invoice cannot both succeed; the loser gets
  ErrAlreadyPaid.

NOTICE LOG:
  The notices table is append-only. No UPDATE or DELETE statements exist
  for it; a sent notification is history, not state.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery improves.

USAGE:
  store, err := sqlite.New("./data/vakeel.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - invoice/store.go: Interface definition and contract
  - invoice/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/Rohinth-KR/DigitalVakeel/invoice"
)

// Store implements invoice.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Invoice records: facts + payment state only. Derived values
	-- (status, interest, totals) are recomputed on read, never stored.
	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		seller_name TEXT NOT NULL,
		buyer_name TEXT NOT NULL,
		invoice_number TEXT NOT NULL,
		invoice_date TEXT NOT NULL,
		principal TEXT NOT NULL,
		registration_id TEXT,
		buyer_tax_id TEXT,
		buyer_contact TEXT,
		paid INTEGER NOT NULL DEFAULT 0,
		paid_at TEXT,
		paid_amount TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_created_at
		ON invoices(created_at);
	CREATE INDEX IF NOT EXISTS idx_invoices_paid
		ON invoices(paid);

	-- Append-only log of sent notifications.
	CREATE TABLE IF NOT EXISTS notices (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id TEXT NOT NULL REFERENCES invoices(id),
		template_no INTEGER NOT NULL,
		channel TEXT NOT NULL,
		sent_to TEXT,
		sent_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notices_invoice
		ON notices(invoice_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// INVOICE RECORDS
// =============================================================================

// Save persists a new invoice record.
func (s *Store) Save(ctx context.Context, rec invoice.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (
			id, seller_name, buyer_name, invoice_number, invoice_date,
			principal, registration_id, buyer_tax_id, buyer_contact,
			paid, paid_at, paid_amount, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Facts.SellerName,
		rec.Facts.BuyerName,
		rec.Facts.InvoiceNumber,
		rec.Facts.InvoiceDate.String(),
		rec.Facts.Principal.String(),
		nullString(rec.Facts.RegistrationID),
		nullString(rec.Facts.BuyerTaxID),
		nullString(rec.Facts.BuyerContact),
		boolToInt(rec.Payment.Paid),
		nullTime(rec.Payment.PaidAt),
		nullDecimal(rec.Payment.PaidAmount),
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save invoice %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns one record by id.
func (s *Store) Get(ctx context.Context, id string) (*invoice.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectInvoice+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, invoice.ErrNotFound
	}

	rec, err := scanRecord(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns all records ordered by creation time.
func (s *Store) List(ctx context.Context) ([]invoice.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectInvoice+` ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []invoice.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkPaid transitions a record to paid exactly once. The conditional
// update on paid = 0 makes the transition race-free; the store mutex
// keeps SQLite's single-writer rule happy.
func (s *Store) MarkPaid(ctx context.Context, id string, paidAt time.Time, paidAmount decimal.Decimal) (*invoice.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE invoices
		SET paid = 1, paid_at = ?, paid_amount = ?
		WHERE id = ? AND paid = 0`,
		paidAt.UTC().Format(time.RFC3339),
		paidAmount.String(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invoice %s paid: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Distinguish missing from already paid.
		var paid int
		err := tx.QueryRowContext(ctx, `SELECT paid FROM invoices WHERE id = ?`, id).Scan(&paid)
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, invoice.ErrAlreadyPaid
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.getLocked(ctx, id)
}

// getLocked is Get without taking the mutex; for use by MarkPaid.
func (s *Store) getLocked(ctx context.Context, id string) (*invoice.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectInvoice+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, invoice.ErrNotFound
	}
	rec, err := scanRecord(rows)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

const selectInvoice = `
	SELECT id, seller_name, buyer_name, invoice_number, invoice_date,
	       principal, registration_id, buyer_tax_id, buyer_contact,
	       paid, paid_at, paid_amount, created_at
	FROM invoices`

func scanRecord(rows *sql.Rows) (invoice.Record, error) {
	var rec invoice.Record
	var invoiceDate, principal, createdAt string
	var registrationID, buyerTaxID, contact sql.NullString
	var paid int
	var paidAt, paidAmount sql.NullString

	err := rows.Scan(
		&rec.ID,
		&rec.Facts.SellerName,
		&rec.Facts.BuyerName,
		&rec.Facts.InvoiceNumber,
		&invoiceDate,
		&principal,
		&registrationID,
		&buyerTaxID,
		&contact,
		&paid,
		&paidAt,
		&paidAmount,
		&createdAt,
	)
	if err != nil {
		return invoice.Record{}, err
	}

	rec.Facts.InvoiceDate, err = invoice.ParseDate(invoiceDate)
	if err != nil {
		return invoice.Record{}, fmt.Errorf("corrupt invoice_date for %s: %w", rec.ID, err)
	}
	rec.Facts.Principal, err = decimal.NewFromString(principal)
	if err != nil {
		return invoice.Record{}, fmt.Errorf("corrupt principal for %s: %w", rec.ID, err)
	}
	rec.Facts.RegistrationID = registrationID.String
	rec.Facts.BuyerTaxID = buyerTaxID.String
	rec.Facts.BuyerContact = contact.String

	rec.Payment.Paid = paid != 0
	if paidAt.Valid {
		t, err := time.Parse(time.RFC3339, paidAt.String)
		if err != nil {
			return invoice.Record{}, fmt.Errorf("corrupt paid_at for %s: %w", rec.ID, err)
		}
		rec.Payment.PaidAt = &t
	}
	if paidAmount.Valid {
		d, err := decimal.NewFromString(paidAmount.String)
		if err != nil {
			return invoice.Record{}, fmt.Errorf("corrupt paid_amount for %s: %w", rec.ID, err)
		}
		rec.Payment.PaidAmount = &d
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return invoice.Record{}, fmt.Errorf("corrupt created_at for %s: %w", rec.ID, err)
	}

	return rec, nil
}

// =============================================================================
// NOTICE LOG (append-only)
// =============================================================================

// AppendNotice appends a sent-notification entry.
func (s *Store) AppendNotice(ctx context.Context, n invoice.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notices (invoice_id, template_no, channel, sent_to, sent_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.InvoiceID,
		n.TemplateNo,
		string(n.Channel),
		nullString(n.SentTo),
		n.SentAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append notice for %s: %w", n.InvoiceID, err)
	}
	return nil
}

// ListNotices returns the notice log for one invoice, oldest first.
func (s *Store) ListNotices(ctx context.Context, invoiceID string) ([]invoice.Notice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT invoice_id, template_no, channel, sent_to, sent_at
		FROM notices
		WHERE invoice_id = ?
		ORDER BY seq`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notices []invoice.Notice
	for rows.Next() {
		var n invoice.Notice
		var ch, sentAt string
		var sentTo sql.NullString

		if err := rows.Scan(&n.InvoiceID, &n.TemplateNo, &ch, &sentTo, &sentAt); err != nil {
			return nil, err
		}
		n.Channel = invoice.Channel(ch)
		n.SentTo = sentTo.String
		n.SentAt, err = time.Parse(time.RFC3339, sentAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt sent_at for %s: %w", n.InvoiceID, err)
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

// Reset clears all data. Dev and test use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM notices`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM invoices`)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
