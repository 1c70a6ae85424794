/*
dto.go - Request/response data structures for the invoice API

PURPOSE:
  Defines the JSON shapes exchanged with the dashboard. Field names are
  camelCase to match the frontend. Every response is wrapped in the
  standard envelope:

    success: {"ok": true,  "data": ...}
    failure: {"ok": false, "error": "message"}

MONEY:
  Amounts are decimal internally and serialized as JSON numbers with two
  decimal places. The conversion happens only at this boundary.

SEE ALSO:
  - handlers.go: Handlers that produce these shapes
  - invoice/types.go: The domain types behind them
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Rohinth-KR/DigitalVakeel/invoice"
)

// =============================================================================
// REQUESTS
// =============================================================================

// CreateInvoiceRequest is the body for POST /api/invoices. Dates are
// ISO YYYY-MM-DD and the amount is a string so the intake form can pass
// extractor output through unchanged.
type CreateInvoiceRequest struct {
	SellerName     string `json:"sellerName"`
	BuyerName      string `json:"buyerName"`
	InvoiceNumber  string `json:"invoiceNumber"`
	InvoiceDate    string `json:"invoiceDate"`
	Amount         string `json:"amount"`
	RegistrationID string `json:"registrationId"`
	BuyerTaxID     string `json:"buyerTaxId"`
	BuyerContact   string `json:"buyerContact"`
}

// PayRequest is the body for POST /api/invoices/{id}/pay. PaidAmount is
// optional; when omitted the current total due (principal plus accrued
// interest) is recorded.
type PayRequest struct {
	PaidAmount *float64 `json:"paidAmount"`
}

// NoticeRequest is the body for POST /api/invoices/{id}/notices, used by
// operators to record a notice that was delivered out of band.
type NoticeRequest struct {
	TemplateNo int    `json:"templateNo"`
	Channel    string `json:"channel"`
	SentTo     string `json:"sentTo"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// InvoiceDTO is the full invoice view: stored facts, payment state, and
// the derived state recomputed for today.
type InvoiceDTO struct {
	ID             string  `json:"id"`
	SellerName     string  `json:"sellerName"`
	BuyerName      string  `json:"buyerName"`
	InvoiceNumber  string  `json:"invoiceNumber"`
	InvoiceDate    string  `json:"invoiceDate"`
	Amount         float64 `json:"amount"`
	RegistrationID string  `json:"registrationId,omitempty"`
	BuyerTaxID     string  `json:"buyerTaxId,omitempty"`
	BuyerContact   string  `json:"buyerContact,omitempty"`
	CreatedAt      string  `json:"createdAt"`

	Paid       bool     `json:"paid"`
	PaidAt     *string  `json:"paidAt,omitempty"`
	PaidAmount *float64 `json:"paidAmount,omitempty"`

	DueDate         string  `json:"dueDate"`
	Status          string  `json:"status"`
	DaysOverdue     int     `json:"daysOverdue"`
	DaysUntilDue    int     `json:"daysUntilDue"`
	InterestAccrued float64 `json:"interestAccrued"`
	TotalDue        float64 `json:"totalDue"`
}

// TriggerDTO is one notification due today for an invoice.
type TriggerDTO struct {
	TriggerDay int    `json:"triggerDay"`
	TemplateNo int    `json:"templateNo"`
	Channel    string `json:"channel"`
	Recipient  string `json:"recipient,omitempty"`
	Subject    string `json:"subject,omitempty"`
}

// TriggerCheckDTO is the trigger evaluation for a single invoice.
type TriggerCheckDTO struct {
	InvoiceID   string       `json:"invoiceId"`
	DaysOverdue int          `json:"daysOverdue"`
	Status      string       `json:"status"`
	Triggers    []TriggerDTO `json:"triggers"`
	HasTriggers bool         `json:"hasTriggers"`
}

// NoticeDTO is one entry in an invoice's notice log.
type NoticeDTO struct {
	InvoiceID  string `json:"invoiceId"`
	TemplateNo int    `json:"templateNo"`
	Channel    string `json:"channel"`
	SentTo     string `json:"sentTo,omitempty"`
	SentAt     string `json:"sentAt"`
}

// SummaryDTO is the portfolio roll-up for the dashboard header.
type SummaryDTO struct {
	TotalInvoices    int     `json:"totalInvoices"`
	OverdueCount     int     `json:"overdueCount"`
	PaidCount        int     `json:"paidCount"`
	TotalPrincipal   float64 `json:"totalPrincipal"`
	TotalInterest    float64 `json:"totalInterest"`
	TotalOutstanding float64 `json:"totalOutstanding"`
}

// =============================================================================
// CONVERSION
// =============================================================================

func toInvoiceDTO(rec invoice.Record, derived invoice.DerivedState) InvoiceDTO {
	dto := InvoiceDTO{
		ID:             rec.ID,
		SellerName:     rec.Facts.SellerName,
		BuyerName:      rec.Facts.BuyerName,
		InvoiceNumber:  rec.Facts.InvoiceNumber,
		InvoiceDate:    rec.Facts.InvoiceDate.String(),
		Amount:         rec.Facts.Principal.InexactFloat64(),
		RegistrationID: rec.Facts.RegistrationID,
		BuyerTaxID:     rec.Facts.BuyerTaxID,
		BuyerContact:   rec.Facts.BuyerContact,
		CreatedAt:      rec.CreatedAt.Format(time.RFC3339),

		Paid: rec.Payment.Paid,

		DueDate:         derived.DueDate.String(),
		Status:          string(derived.Status),
		DaysOverdue:     derived.DaysOverdue,
		DaysUntilDue:    derived.DaysUntilDue,
		InterestAccrued: derived.InterestAccrued.InexactFloat64(),
		TotalDue:        derived.TotalDue.InexactFloat64(),
	}

	if rec.Payment.PaidAt != nil {
		s := rec.Payment.PaidAt.Format(time.RFC3339)
		dto.PaidAt = &s
	}
	if rec.Payment.PaidAmount != nil {
		f := rec.Payment.PaidAmount.InexactFloat64()
		dto.PaidAmount = &f
	}
	return dto
}

func toTriggerDTOs(triggers []invoice.Trigger) []TriggerDTO {
	dtos := make([]TriggerDTO, 0, len(triggers))
	for _, t := range triggers {
		dtos = append(dtos, TriggerDTO{
			TriggerDay: t.TriggerDay,
			TemplateNo: t.TemplateNo,
			Channel:    string(t.Channel),
			Recipient:  t.Recipient,
			Subject:    t.Subject,
		})
	}
	return dtos
}

func toNoticeDTOs(notices []invoice.Notice) []NoticeDTO {
	dtos := make([]NoticeDTO, 0, len(notices))
	for _, n := range notices {
		dtos = append(dtos, NoticeDTO{
			InvoiceID:  n.InvoiceID,
			TemplateNo: n.TemplateNo,
			Channel:    string(n.Channel),
			SentTo:     n.SentTo,
			SentAt:     n.SentAt.Format(time.RFC3339),
		})
	}
	return dtos
}

// =============================================================================
// ENVELOPE
// =============================================================================

type envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{OK: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{OK: false, Error: message})
}
