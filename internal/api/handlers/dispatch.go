package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rise-pro/debt-aging/internal/api/middleware"
	"github.com/rise-pro/debt-aging/internal/drafts"
	"github.com/rise-pro/debt-aging/internal/jobs"
	"github.com/rise-pro/debt-aging/internal/ledger"
	"github.com/rise-pro/debt-aging/internal/notify"
	"github.com/rise-pro/debt-aging/internal/store"
	"github.com/rise-pro/debt-aging/internal/suppliers"
)

// DispatchHandler handles draft-dispatch and automation endpoints.
type DispatchHandler struct {
	store     *store.Store
	suppliers suppliers.Repository // optional
	publisher jobs.Publisher
	jobStore  jobs.JobStore
	webhook   *notify.WebhookClient
	company   string
	log       zerolog.Logger
}

// NewDispatchHandler creates a new dispatch handler.
func NewDispatchHandler(st *store.Store, supplierRepo suppliers.Repository, publisher jobs.Publisher, jobStore jobs.JobStore, webhook *notify.WebhookClient, company string, log zerolog.Logger) *DispatchHandler {
	return &DispatchHandler{
		store:     st,
		suppliers: supplierRepo,
		publisher: publisher,
		jobStore:  jobStore,
		webhook:   webhook,
		company:   company,
		log:       log,
	}
}

// SendDrafts handles POST /api/send-drafts.
// It rebuilds the drafts for the requested category (transfer_tag when
// omitted) from the current result set and enqueues one dispatch job.
func (h *DispatchHandler) SendDrafts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category ledger.Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" {
		req.Category = ledger.CategoryTransferTag
	}

	rows, err := h.store.GetCategory(req.Category)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(rows) == 0 {
		middleware.WriteError(w, http.StatusNotFound, "no rows to draft from")
		return
	}

	dir := drafts.Directory{}
	if h.suppliers != nil {
		supplierRows, err := h.suppliers.ListSuppliers(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Supplier registry unavailable, drafts will carry no addresses")
		} else {
			dir = suppliers.BuildDirectory(supplierRows)
		}
	}

	draftList := drafts.Build(rows, h.company, dir)
	job := &jobs.SendDraftsJob{
		RunID:  h.store.RunID(),
		Drafts: draftList,
	}

	if err := h.publisher.PublishSendDrafts(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue draft dispatch")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue draft dispatch")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("run_id", job.RunID).
		Int("drafts", len(draftList)).
		Msg("Draft dispatch enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":      job.JobID,
		"run_id":      job.RunID,
		"draft_count": len(draftList),
		"status":      string(job.Status),
	})
}

// TriggerAutomation handles POST /api/trigger-automation.
// It fires the automation webhook directly, bypassing the job queue.
func (h *DispatchHandler) TriggerAutomation(w http.ResponseWriter, r *http.Request) {
	if err := h.webhook.Trigger(r.Context(), h.store.RunID()); err != nil {
		h.log.Error().Err(err).Msg("Automation webhook failed")
		middleware.WriteError(w, http.StatusBadGateway, "Automation webhook failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "triggered",
		"run_id": h.store.RunID(),
	})
}

// GetJob handles GET /api/jobs/{id}.
func (h *DispatchHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs.
func (h *DispatchHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		RunID:  query.Get("run_id"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.jobStore.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
