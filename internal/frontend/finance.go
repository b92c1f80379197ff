package frontend

import (
	"net/http"

	finance "github.com/freelog/freelog/internal/finance/domain"
)

// ListPayments returns the freelancer's payments.
// GET /api/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Finance.List(r.Context(), profile(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, PaymentsResponse{Payments: nonNil(list)})
}

// CreatePayment records a payment against one of the freelancer's projects.
// POST /api/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req finance.NewPaymentInput
	if !h.decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Finance.Create(r.Context(), profile(r), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

// MarkPaid marks a payment as received.
// PATCH /api/payments/{id}/paid
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	var req MarkPaidRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Finance.MarkPaid(r.Context(), profile(r), r.PathValue("id"), req.PaidDate)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// FinanceSummary returns budget and payment totals with the monthly series.
// GET /api/finances/summary
func (h *Handler) FinanceSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Finance.Summary(r.Context(), profile(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

// ClientFinances returns the client's summary and payments.
// GET /api/client/finances
func (h *Handler) ClientFinances(w http.ResponseWriter, r *http.Request) {
	p := profile(r)
	s, err := h.svc.Finance.ClientSummary(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	list, err := h.svc.Finance.ListForClient(r.Context(), p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ClientFinancesResponse{Summary: s, Payments: nonNil(list)})
}
