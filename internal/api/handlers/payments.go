package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rise-pro/debt-aging/internal/api/middleware"
	"github.com/rise-pro/debt-aging/internal/ledger"
	"github.com/rise-pro/debt-aging/internal/payments"
	"github.com/rise-pro/debt-aging/internal/store"
	"github.com/rise-pro/debt-aging/internal/workbook"
)

// PaymentsHandler handles payment-export endpoints over the rows
// parked in the ready-payment bucket.
type PaymentsHandler struct {
	store *store.Store
	calc  *payments.Calculator
	log   zerolog.Logger
}

// NewPaymentsHandler creates a new payments handler.
func NewPaymentsHandler(st *store.Store, calc *payments.Calculator, log zerolog.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		store: st,
		calc:  calc,
		log:   log,
	}
}

type paymentRequest struct {
	Category ledger.Category `json:"category"`
	Label    string          `json:"label"`
}

// GeneratePayment handles POST /api/generate-payment.
// It computes payment dates for every row of the requested category
// (ready_payment when omitted) and returns the export as JSON.
func (h *PaymentsHandler) GeneratePayment(w http.ResponseWriter, r *http.Request) {
	export, ok := h.buildExport(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, export)
}

// ExportReadyPayment handles POST /api/export-ready-payment.
// Same calculation as GeneratePayment, streamed as a payment-order
// workbook instead of JSON.
func (h *PaymentsHandler) ExportReadyPayment(w http.ResponseWriter, r *http.Request) {
	export, ok := h.buildExport(w, r)
	if !ok {
		return
	}

	f, err := workbook.RenderPaymentExport(export)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to render payment export")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to render payment export")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "payment_order.xlsx"))
	if err := f.Write(w); err != nil {
		h.log.Error().Err(err).Msg("Failed to stream payment export")
	}
}

func (h *PaymentsHandler) buildExport(w http.ResponseWriter, r *http.Request) (*payments.Export, bool) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if req.Category == "" {
		req.Category = ledger.CategoryReadyPayment
	}

	rows, err := h.store.GetCategory(req.Category)
	if err != nil {
		// The only store error reachable here is an unknown category.
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if len(rows) == 0 {
		middleware.WriteError(w, http.StatusNotFound, fmt.Sprintf("no rows in category %q", req.Category))
		return nil, false
	}

	return h.calc.BuildExport(rows, req.Label), true
}
