/*
handlers.go - HTTP API handlers for the invoice lifecycle engine

PURPOSE:
  Exposes the invoice lifecycle engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.
  Derived state (status, interest, trigger evaluation) is recomputed
  from stored facts on every read; nothing derived is persisted.

ENDPOINTS:
  Invoices:
    GET    /api/invoices               List all invoices
    POST   /api/invoices               Register an invoice
    GET    /api/invoices/{id}          Get one invoice
    POST   /api/invoices/{id}/pay      Mark paid
    GET    /api/invoices/{id}/triggers Trigger evaluation for one invoice
    GET    /api/invoices/{id}/notices  Notice log
    POST   /api/invoices/{id}/notices  Record an out-of-band notice

  Portfolio:
    GET    /api/triggers/today         Invoices with notifications due today
    GET    /api/summary                Portfolio totals

  Intake:
    POST   /api/extract                Extract fields from an invoice document

  Health:
    GET    /api/health                 Liveness probe

ERROR HANDLING:
  Errors are returned in the standard envelope with appropriate status:
  - 400: Validation errors, invalid input
  - 404: Invoice not found
  - 409: Invoice already marked paid
  - 502: Extraction service unavailable
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scheduler.go: The daily trigger sweep
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Rohinth-KR/DigitalVakeel/extract"
	"github.com/Rohinth-KR/DigitalVakeel/invoice"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     invoice.Store
	Extractor extract.Extractor
	Log       zerolog.Logger

	// Now supplies "today" for derived-state computation. Overridable in
	// tests; defaults to the current UTC date.
	Now func() invoice.Date
}

// NewHandler creates a handler with the given store.
func NewHandler(store invoice.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
		Now:   invoice.Today,
	}
}

func (h *Handler) today() invoice.Date {
	if h.Now != nil {
		return h.Now()
	}
	return invoice.Today()
}

// =============================================================================
// HEALTH
// =============================================================================

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// CreateInvoice registers a new invoice from validated facts.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	invoiceDate, err := invoice.ParseDate(req.InvoiceDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invoiceDate must be a valid date in YYYY-MM-DD format")
		return
	}

	principal, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(w, http.StatusBadRequest, invoice.ErrInvalidAmount.Error())
		return
	}

	facts := invoice.Facts{
		SellerName:     strings.TrimSpace(req.SellerName),
		BuyerName:      strings.TrimSpace(req.BuyerName),
		InvoiceNumber:  strings.TrimSpace(req.InvoiceNumber),
		InvoiceDate:    invoiceDate,
		Principal:      principal,
		RegistrationID: strings.TrimSpace(req.RegistrationID),
		BuyerTaxID:     strings.TrimSpace(req.BuyerTaxID),
		BuyerContact:   strings.TrimSpace(req.BuyerContact),
	}

	if err := facts.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := invoice.Record{
		ID:        invoice.NewInvoiceID(),
		CreatedAt: time.Now().UTC(),
		Facts:     facts,
	}

	if err := h.Store.Save(r.Context(), rec); err != nil {
		h.Log.Error().Err(err).Str("invoice_id", rec.ID).Msg("saving invoice")
		respondError(w, http.StatusInternalServerError, "failed to save invoice")
		return
	}

	saved, err := h.Store.Get(r.Context(), rec.ID)
	if err != nil {
		h.Log.Error().Err(err).Str("invoice_id", rec.ID).Msg("reading back invoice")
		respondError(w, http.StatusInternalServerError, "failed to read invoice")
		return
	}

	derived := invoice.Recompute(saved.Facts, saved.Payment, h.today())
	h.Log.Info().
		Str("invoice_id", saved.ID).
		Str("invoice_number", saved.Facts.InvoiceNumber).
		Str("status", string(derived.Status)).
		Msg("invoice registered")

	respond(w, http.StatusCreated, toInvoiceDTO(*saved, derived))
}

// ListInvoices returns every invoice with freshly computed derived state.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("listing invoices")
		respondError(w, http.StatusInternalServerError, "failed to list invoices")
		return
	}

	today := h.today()
	dtos := make([]InvoiceDTO, 0, len(records))
	for _, rec := range records {
		derived := invoice.Recompute(rec.Facts, rec.Payment, today)
		dtos = append(dtos, toInvoiceDTO(rec, derived))
	}

	respond(w, http.StatusOK, dtos)
}

// GetInvoice returns a single invoice. IDs are case-insensitive.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(chi.URLParam(r, "id"))

	rec, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if invoice.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "invoice not found")
			return
		}
		h.Log.Error().Err(err).Str("invoice_id", id).Msg("getting invoice")
		respondError(w, http.StatusInternalServerError, "failed to get invoice")
		return
	}

	derived := invoice.Recompute(rec.Facts, rec.Payment, h.today())
	respond(w, http.StatusOK, toInvoiceDTO(*rec, derived))
}

// PayInvoice marks an invoice paid. Derived state freezes from this
// moment: no further interest accrues and no further triggers fire.
func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(chi.URLParam(r, "id"))

	var req PayRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	rec, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if invoice.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "invoice not found")
			return
		}
		h.Log.Error().Err(err).Str("invoice_id", id).Msg("getting invoice for payment")
		respondError(w, http.StatusInternalServerError, "failed to get invoice")
		return
	}

	today := h.today()

	// Default to the full amount owed today: principal plus accrued interest.
	paidAmount := invoice.Recompute(rec.Facts, rec.Payment, today).TotalDue
	if req.PaidAmount != nil {
		paidAmount = decimal.NewFromFloat(*req.PaidAmount)
		if paidAmount.Sign() <= 0 {
			respondError(w, http.StatusBadRequest, "paidAmount must be a positive number")
			return
		}
	}

	updated, err := h.Store.MarkPaid(r.Context(), id, today.Time(), paidAmount)
	if err != nil {
		switch {
		case invoice.IsNotFound(err):
			respondError(w, http.StatusNotFound, "invoice not found")
		case errors.Is(err, invoice.ErrAlreadyPaid):
			respondError(w, http.StatusConflict, "invoice is already marked paid")
		default:
			h.Log.Error().Err(err).Str("invoice_id", id).Msg("marking invoice paid")
			respondError(w, http.StatusInternalServerError, "failed to mark invoice paid")
		}
		return
	}

	h.Log.Info().
		Str("invoice_id", id).
		Str("paid_amount", paidAmount.StringFixed(2)).
		Msg("invoice marked paid")

	derived := invoice.Recompute(updated.Facts, updated.Payment, today)
	respond(w, http.StatusOK, toInvoiceDTO(*updated, derived))
}

// =============================================================================
// TRIGGER HANDLERS
// =============================================================================

// GetInvoiceTriggers evaluates notification triggers for one invoice.
func (h *Handler) GetInvoiceTriggers(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(chi.URLParam(r, "id"))

	rec, err := h.Store.Get(r.Context(), id)
	if err != nil {
		if invoice.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "invoice not found")
			return
		}
		h.Log.Error().Err(err).Str("invoice_id", id).Msg("getting invoice for trigger check")
		respondError(w, http.StatusInternalServerError, "failed to get invoice")
		return
	}

	derived := invoice.Recompute(rec.Facts, rec.Payment, h.today())
	triggers := invoice.CheckTriggers(rec.Facts, rec.Payment, derived.DaysOverdue)

	respond(w, http.StatusOK, TriggerCheckDTO{
		InvoiceID:   rec.ID,
		DaysOverdue: derived.DaysOverdue,
		Status:      string(derived.Status),
		Triggers:    toTriggerDTOs(triggers),
		HasTriggers: len(triggers) > 0,
	})
}

// TodaysTriggers scans the portfolio and returns every invoice with at
// least one notification due today.
func (h *Handler) TodaysTriggers(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("listing invoices for trigger scan")
		respondError(w, http.StatusInternalServerError, "failed to list invoices")
		return
	}

	today := h.today()
	checks := make([]TriggerCheckDTO, 0)
	for _, rec := range records {
		derived := invoice.Recompute(rec.Facts, rec.Payment, today)
		triggers := invoice.CheckTriggers(rec.Facts, rec.Payment, derived.DaysOverdue)
		if len(triggers) == 0 {
			continue
		}
		checks = append(checks, TriggerCheckDTO{
			InvoiceID:   rec.ID,
			DaysOverdue: derived.DaysOverdue,
			Status:      string(derived.Status),
			Triggers:    toTriggerDTOs(triggers),
			HasTriggers: true,
		})
	}

	respond(w, http.StatusOK, checks)
}

// =============================================================================
// NOTICE LOG HANDLERS
// =============================================================================

// LogNotice records a notice delivered outside the system (a phone call,
// a printed letter) in the invoice's append-only notice log.
func (h *Handler) LogNotice(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(chi.URLParam(r, "id"))

	var req NoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TemplateNo < invoice.TemplateSoftReminder || req.TemplateNo > invoice.TemplateFinalNotice {
		respondError(w, http.StatusBadRequest, "templateNo must be 1, 2 or 3")
		return
	}
	channel := invoice.Channel(req.Channel)
	if channel != invoice.ChannelWhatsApp && channel != invoice.ChannelEmail {
		respondError(w, http.StatusBadRequest, "channel must be whatsapp or email")
		return
	}

	if _, err := h.Store.Get(r.Context(), id); err != nil {
		if invoice.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "invoice not found")
			return
		}
		h.Log.Error().Err(err).Str("invoice_id", id).Msg("getting invoice for notice")
		respondError(w, http.StatusInternalServerError, "failed to get invoice")
		return
	}

	notice := invoice.Notice{
		InvoiceID:  id,
		TemplateNo: req.TemplateNo,
		Channel:    channel,
		SentTo:     strings.TrimSpace(req.SentTo),
		SentAt:     h.today().Time(),
	}
	if err := h.Store.AppendNotice(r.Context(), notice); err != nil {
		h.Log.Error().Err(err).Str("invoice_id", id).Msg("recording notice")
		respondError(w, http.StatusInternalServerError, "failed to record notice")
		return
	}

	respond(w, http.StatusCreated, toNoticeDTOs([]invoice.Notice{notice})[0])
}

// ListNotices returns the notice log for an invoice, oldest first.
func (h *Handler) ListNotices(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(chi.URLParam(r, "id"))

	if _, err := h.Store.Get(r.Context(), id); err != nil {
		if invoice.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "invoice not found")
			return
		}
		h.Log.Error().Err(err).Str("invoice_id", id).Msg("getting invoice for notice log")
		respondError(w, http.StatusInternalServerError, "failed to get invoice")
		return
	}

	notices, err := h.Store.ListNotices(r.Context(), id)
	if err != nil {
		h.Log.Error().Err(err).Str("invoice_id", id).Msg("listing notices")
		respondError(w, http.StatusInternalServerError, "failed to list notices")
		return
	}

	respond(w, http.StatusOK, toNoticeDTOs(notices))
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary returns portfolio totals. Sums are computed in decimal and
// converted to float only at the JSON boundary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.List(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("listing invoices for summary")
		respondError(w, http.StatusInternalServerError, "failed to list invoices")
		return
	}

	today := h.today()
	var (
		overdueCount, paidCount int
		totalPrincipal          = decimal.Zero
		totalInterest           = decimal.Zero
		totalOutstanding        = decimal.Zero
	)

	for _, rec := range records {
		derived := invoice.Recompute(rec.Facts, rec.Payment, today)
		totalPrincipal = totalPrincipal.Add(rec.Facts.Principal)

		if rec.Payment.Paid {
			paidCount++
			continue
		}

		totalInterest = totalInterest.Add(derived.InterestAccrued)
		totalOutstanding = totalOutstanding.Add(derived.TotalDue)
		if derived.DaysOverdue > 0 {
			overdueCount++
		}
	}

	respond(w, http.StatusOK, SummaryDTO{
		TotalInvoices:    len(records),
		OverdueCount:     overdueCount,
		PaidCount:        paidCount,
		TotalPrincipal:   totalPrincipal.InexactFloat64(),
		TotalInterest:    totalInterest.InexactFloat64(),
		TotalOutstanding: totalOutstanding.InexactFloat64(),
	})
}

// =============================================================================
// EXTRACTION
// =============================================================================

// ExtractDocument forwards an uploaded invoice document to the
// extraction service and returns the normalized field values for the
// intake form. The user reviews and corrects them before submission.
func (h *Handler) ExtractDocument(w http.ResponseWriter, r *http.Request) {
	if h.Extractor == nil {
		respondError(w, http.StatusServiceUnavailable, "extraction service is not configured")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		respondError(w, http.StatusBadRequest, "multipart field 'document' is required")
		return
	}
	defer file.Close()

	fields, err := h.Extractor.Extract(r.Context(), header.Filename, file)
	if err != nil {
		h.Log.Error().Err(err).Str("filename", header.Filename).Msg("document extraction failed")
		respondError(w, http.StatusBadGateway, "extraction service failed")
		return
	}

	respond(w, http.StatusOK, extract.Normalize(fields))
}
