/*
Package invoice provides the core invoice lifecycle engine.

PURPOSE:
  This package contains the pure domain logic for tracking MSME invoices
  against the 45-day statutory payment window of the MSMED Act 2006:
  due-date resolution, day-driven status classification, statutory
  interest accrual, and notification trigger determination.

KEY CONCEPTS IN THIS FILE (types.go):
  - Facts: Immutable invoice data supplied by the seller at intake
  - PaymentState: The paid flag plus payment details; transitions exactly once
  - DerivedState: Everything computed from Facts + PaymentState + today
  - Record: The persisted shape (identity + Facts + PaymentState)
  - Notice: Append-only log entry for a sent notification

DESIGN PRINCIPLES:
  1. Purity: Derived values are a function of (facts, payment, today).
     Nothing in this package performs I/O or reads the wall clock.
  2. Precision: Uses decimal.Decimal for all money arithmetic.
  3. Recompute, never trust: Stored derived values are at most a display
     cache. Every read recomputes DerivedState from first principles.

USAGE:
  facts := invoice.Facts{
      SellerName:    "Arjun Textiles",
      BuyerName:     "Mega-Retail Corp",
      InvoiceNumber: "INV-2025-101",
      InvoiceDate:   invoice.NewDate(2025, time.February, 1),
      Principal:     decimal.NewFromInt(500000),
  }
  derived := invoice.Recompute(facts, invoice.PaymentState{}, invoice.Today())

SEE ALSO:
  - dates.go:     Due-date and day-count resolution
  - status.go:    Status classification ladder
  - interest.go:  Statutory interest accrual
  - triggers.go:  Notification trigger determination
  - recompute.go: The orchestrating entry point
*/
package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentWindowDays is the statutory payment window of Section 15,
// MSMED Act 2006. The due date is always InvoiceDate + 45 calendar days.
const PaymentWindowDays = 45

// =============================================================================
// STATUS - Day-driven lifecycle status
// =============================================================================

type Status string

const (
	StatusActive     Status = "ACTIVE"      // Within the window, due date not near
	StatusDueSoon    Status = "DUE_SOON"    // 5 days or fewer until the due date
	StatusDueToday   Status = "DUE_TODAY"   // Today is exactly the due date
	StatusOverdue    Status = "OVERDUE"     // 1-14 days past due, interest running
	StatusNoticeSent Status = "NOTICE_SENT" // 15-21 days past due, formal notice stage
	StatusEscalation Status = "ESCALATION"  // 22+ days past due, filing imminent
	StatusPaid       Status = "PAID"        // Terminal; absorbs every other state
)

// =============================================================================
// FACTS - Immutable invoice data
// =============================================================================

// Facts holds the seller-supplied fields of an invoice. Facts are created
// once at intake and never recomputed or mutated afterwards.
type Facts struct {
	SellerName    string
	BuyerName     string
	InvoiceNumber string
	InvoiceDate   Date
	Principal     decimal.Decimal

	// Optional, but strengthen the legal position and enable delivery.
	RegistrationID string // Seller's Udyam registration number
	BuyerTaxID     string // Buyer's GSTIN
	BuyerContact   string // Buyer's finance contact (required for delivery, not creation)
}

// Validate checks the creation-time invariants of Facts.
// It returns ErrInvalidAmount for a non-positive principal, ErrInvalidDate
// for a zero invoice date, and ErrMissingField for empty required text.
func (f Facts) Validate() error {
	switch {
	case f.SellerName == "":
		return &MissingFieldError{Field: "sellerName"}
	case f.BuyerName == "":
		return &MissingFieldError{Field: "buyerName"}
	case f.InvoiceNumber == "":
		return &MissingFieldError{Field: "invoiceNumber"}
	}
	if f.InvoiceDate.IsZero() {
		return ErrInvalidDate
	}
	if !f.Principal.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// =============================================================================
// PAYMENT STATE - Mutates exactly once, false -> true
// =============================================================================

// PaymentState records whether and how an invoice was settled.
// Paid is monotonic: once true it never becomes false again, and every
// derived value freezes at that moment.
type PaymentState struct {
	Paid       bool
	PaidAt     *time.Time
	PaidAmount *decimal.Decimal // Amount actually received; may differ from TotalDue
}

// =============================================================================
// DERIVED STATE - Recomputed on every read
// =============================================================================

// DerivedState is fully recomputed from Facts + PaymentState + today.
// It has no persisted lifecycle of its own.
type DerivedState struct {
	DueDate         Date
	DaysOverdue     int
	DaysUntilDue    int
	Status          Status
	InterestAccrued decimal.Decimal
	TotalDue        decimal.Decimal
}

// =============================================================================
// RECORD - Persisted invoice shape
// =============================================================================

// Record is what the store persists: identity plus the two authoritative
// state blocks. Derived values are intentionally absent.
type Record struct {
	ID        string // 8-character uppercase identifier
	CreatedAt time.Time
	Facts     Facts
	Payment   PaymentState
}

// =============================================================================
// NOTICE - Append-only notification log entry
// =============================================================================

// Notice records a notification that was actually sent for an invoice.
// The log is append-only and owned by the notification layer; the engine
// never reads or writes it.
type Notice struct {
	InvoiceID  string
	TemplateNo int
	Channel    Channel
	SentTo     string
	SentAt     time.Time
}
