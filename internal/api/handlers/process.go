// Package handlers implements the HTTP endpoints of the reconciliation
// service.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/rise-pro/debt-aging/internal/api/middleware"
	"github.com/rise-pro/debt-aging/internal/drafts"
	"github.com/rise-pro/debt-aging/internal/history"
	"github.com/rise-pro/debt-aging/internal/ledger"
	"github.com/rise-pro/debt-aging/internal/matching"
	"github.com/rise-pro/debt-aging/internal/store"
	"github.com/rise-pro/debt-aging/internal/suppliers"
	"github.com/rise-pro/debt-aging/internal/workbook"
)

const (
	maxUploadBytes  = 32 << 20
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ProcessHandler handles workbook processing and reclassification
// endpoints.
type ProcessHandler struct {
	store     *store.Store
	engine    *matching.Engine
	suppliers suppliers.Repository // optional
	history   history.Repository   // optional
	company   string
	log       zerolog.Logger
}

// NewProcessHandler creates a new process handler. The supplier and
// history repositories may be nil; processing then runs without a
// registry address book and without run history.
func NewProcessHandler(st *store.Store, engine *matching.Engine, supplierRepo suppliers.Repository, historyRepo history.Repository, company string, log zerolog.Logger) *ProcessHandler {
	return &ProcessHandler{
		store:     st,
		engine:    engine,
		suppliers: supplierRepo,
		history:   historyRepo,
		company:   company,
		log:       log,
	}
}

// ProcessExcel handles POST /api/process-excel.
// It ingests the uploaded aging report, classifies its rows, replaces
// the working result set and streams back the decorated workbook with
// the run statistics in response headers.
func (h *ProcessHandler) ProcessExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	l, err := workbook.ReadLedger(file)
	if err != nil {
		h.log.Warn().Err(err).Str("filename", header.Filename).Msg("Rejected upload")
		middleware.WriteError(w, http.StatusBadRequest, "Not a valid aging report")
		return
	}
	defer l.Close()

	if h.suppliers != nil {
		h.applyRegistryTerms(ctx, l.Rows)
	}

	result := h.engine.Classify(l.Rows)

	dir := drafts.Directory{}
	if h.suppliers != nil {
		rows, err := h.suppliers.ListSuppliers(ctx)
		if err != nil {
			h.log.Warn().Err(err).Msg("Supplier registry unavailable, drafts will carry no addresses")
		} else {
			dir = suppliers.BuildDirectory(rows)
		}
	}
	if contactsFile, _, err := r.FormFile("contacts"); err == nil {
		contactsDir, cerr := workbook.ReadContacts(contactsFile)
		contactsFile.Close()
		if cerr != nil {
			h.log.Warn().Err(cerr).Msg("Skipping unreadable contacts workbook")
		} else {
			// Uploaded contacts override registry addresses.
			for key, address := range contactsDir {
				dir.Set(key, address)
			}
		}
	}

	company := l.CompanyName
	if company == "" {
		company = h.company
	}
	draftList := drafts.Build(result.CategoryRows(ledger.CategoryTransferTag), company, dir)

	h.store.SetResult(result)

	totals := result.Totals()
	if h.history != nil {
		run := &history.RunRow{
			RunID:        result.RunID,
			Filename:     filepath.Base(header.Filename),
			TotalRows:    result.TotalRows(),
			ExactRows:    totals[ledger.CategoryExactMatch],
			TolerantRows: totals[ledger.CategoryTolerantMatch],
			GlobalRows:   totals[ledger.CategoryGlobalMatch],
			TransferRows: totals[ledger.CategoryTransferTag],
			SpecialRows:  totals[ledger.CategorySpecial],
			ProcessedTS:  time.Now(),
		}
		if err := h.history.RecordRun(ctx, run); err != nil {
			h.log.Warn().Err(err).Str("run_id", result.RunID).Msg("Failed to record run history")
		}
	}

	if err := l.RenderProcessed(result, draftList); err != nil {
		h.log.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to render processed workbook")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to render processed workbook")
		return
	}

	h.log.Info().
		Str("run_id", result.RunID).
		Str("filename", header.Filename).
		Int("total_rows", result.TotalRows()).
		Int("exact", totals[ledger.CategoryExactMatch]).
		Int("tolerant", totals[ledger.CategoryTolerantMatch]).
		Int("global", totals[ledger.CategoryGlobalMatch]).
		Int("transfer", totals[ledger.CategoryTransferTag]).
		Int("special", totals[ledger.CategorySpecial]).
		Msg("Processing run completed")

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "processed_"+filepath.Base(header.Filename)))
	w.Header().Set("X-Run-ID", result.RunID)
	w.Header().Set("X-Stats-Total", strconv.Itoa(result.TotalRows()))
	w.Header().Set("X-Stats-Exact", strconv.Itoa(totals[ledger.CategoryExactMatch]))
	w.Header().Set("X-Stats-Tolerant", strconv.Itoa(totals[ledger.CategoryTolerantMatch]))
	w.Header().Set("X-Stats-Global", strconv.Itoa(totals[ledger.CategoryGlobalMatch]))
	w.Header().Set("X-Stats-Transfer", strconv.Itoa(totals[ledger.CategoryTransferTag]))
	w.Header().Set("X-Stats-Special", strconv.Itoa(totals[ledger.CategorySpecial]))

	if err := l.Write(w); err != nil {
		// Headers are already on the wire, nothing left to report to the client.
		h.log.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to stream processed workbook")
	}
}

// applyRegistryTerms fills empty payment-term codes from the supplier
// registry. The report's own column wins when present; lookups are
// cached per account, including misses, so each account costs at most
// one registry query per run.
func (h *ProcessHandler) applyRegistryTerms(ctx context.Context, rows []ledger.Row) {
	cache := make(map[string]string)
	for i := range rows {
		if rows[i].PaymentTerms != "" || rows[i].AccountID == "" {
			continue
		}
		code, seen := cache[rows[i].AccountID]
		if !seen {
			supplier, err := h.suppliers.FindSupplierByAccount(ctx, rows[i].AccountID)
			if err != nil {
				if !errors.Is(err, suppliers.ErrSupplierNotFound) {
					h.log.Warn().Err(err).Str("account", rows[i].AccountID).Msg("Supplier terms lookup failed")
				}
			} else {
				code = supplier.PaymentTerms
			}
			cache[rows[i].AccountID] = code
		}
		rows[i].PaymentTerms = code
	}
}

// PreviewExcel handles POST /api/preview-excel.
// It detects the report layout and returns the first data rows without
// classifying anything or touching the working result set.
func (h *ProcessHandler) PreviewExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	preview, err := workbook.ReadPreview(file)
	if err != nil {
		h.log.Warn().Err(err).Str("filename", header.Filename).Msg("Rejected preview upload")
		middleware.WriteError(w, http.StatusBadRequest, "Not a valid workbook")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, preview)
}

// GetDetails handles GET /api/processing-details/{category}.
func (h *ProcessHandler) GetDetails(w http.ResponseWriter, r *http.Request, category string) {
	rows, err := h.store.GetCategory(ledger.Category(category))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   h.store.RunID(),
		"category": category,
		"rows":     rows,
		"count":    len(rows),
	})
}

// MoveRow handles POST /api/move-row.
func (h *ProcessHandler) MoveRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From ledger.Category `json:"from_category"`
		To   ledger.Category `json:"to_category"`
		Row  ledger.MatchKey `json:"row"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.From == "" || req.To == "" {
		middleware.WriteError(w, http.StatusBadRequest, "from_category and to_category are required")
		return
	}

	if err := h.store.Move(req.From, req.To, req.Row); err != nil {
		h.writeStoreError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "moved",
		"from":   req.From,
		"to":     req.To,
	})
}

// DeleteRow handles POST /api/delete-row.
func (h *ProcessHandler) DeleteRow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category ledger.Category `json:"category"`
		Row      ledger.MatchKey `json:"row"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" {
		middleware.WriteError(w, http.StatusBadRequest, "category is required")
		return
	}

	if err := h.store.Delete(req.Category, req.Row); err != nil {
		h.writeStoreError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "deleted",
		"category": req.Category,
	})
}

// BulkDelete handles POST /api/bulk-delete.
func (h *ProcessHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category ledger.Category `json:"category"`
		Name     string          `json:"name"`
		Account  string          `json:"account"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" {
		middleware.WriteError(w, http.StatusBadRequest, "category is required")
		return
	}
	if req.Name == "" && req.Account == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name or account is required")
		return
	}

	removed, err := h.store.BulkDeleteBySupplier(req.Category, req.Name, req.Account)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "deleted",
		"removed": removed,
	})
}

// writeStoreError maps the store sentinel errors to HTTP statuses.
func (h *ProcessHandler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidCategory):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrEmptyResultSet):
		middleware.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Msg("Store operation failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
