package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rise-pro/debt-aging/internal/api/middleware"
	"github.com/rise-pro/debt-aging/internal/suppliers"
)

// SuppliersHandler handles supplier-registry endpoints.
type SuppliersHandler struct {
	repo suppliers.Repository
	log  zerolog.Logger
}

// NewSuppliersHandler creates a new suppliers handler.
func NewSuppliersHandler(repo suppliers.Repository, log zerolog.Logger) *SuppliersHandler {
	return &SuppliersHandler{
		repo: repo,
		log:  log,
	}
}

type supplierRequest struct {
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PaymentTerms  string `json:"payment_terms"`
}

// ListSuppliers handles GET /api/suppliers.
func (h *SuppliersHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.ListSuppliers(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list suppliers")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list suppliers")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"suppliers": rows,
		"count":     len(rows),
	})
}

// CreateSupplier handles POST /api/suppliers.
func (h *SuppliersHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.AccountNumber) == "" || strings.TrimSpace(req.Name) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_number and name are required")
		return
	}

	row := &suppliers.SupplierRow{
		SupplierID:    uuid.NewString(),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		PaymentTerms:  strings.TrimSpace(req.PaymentTerms),
		CreatedTS:     time.Now(),
	}

	if err := h.repo.InsertSupplier(r.Context(), row); err != nil {
		h.log.Error().Err(err).Msg("Failed to create supplier")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create supplier")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, row)
}

// DeleteAllSuppliers handles DELETE /api/suppliers.
func (h *SuppliersHandler) DeleteAllSuppliers(w http.ResponseWriter, r *http.Request) {
	removed, err := h.repo.DeleteAllSuppliers(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to delete suppliers")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete suppliers")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "deleted",
		"removed": removed,
	})
}

// UpdateSupplier handles PUT /api/suppliers/{id}.
func (h *SuppliersHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request, supplierID string) {
	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	row := &suppliers.SupplierRow{
		SupplierID:    supplierID,
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		PaymentTerms:  strings.TrimSpace(req.PaymentTerms),
	}

	if err := h.repo.UpdateSupplier(r.Context(), row); err != nil {
		if errors.Is(err, suppliers.ErrSupplierNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Supplier not found")
			return
		}
		h.log.Error().Err(err).Str("supplier_id", supplierID).Msg("Failed to update supplier")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update supplier")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "updated",
		"supplier_id": supplierID,
	})
}

// DeleteSupplier handles DELETE /api/suppliers/{id}.
func (h *SuppliersHandler) DeleteSupplier(w http.ResponseWriter, r *http.Request, supplierID string) {
	if err := h.repo.DeleteSupplier(r.Context(), supplierID); err != nil {
		if errors.Is(err, suppliers.ErrSupplierNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Supplier not found")
			return
		}
		h.log.Error().Err(err).Str("supplier_id", supplierID).Msg("Failed to delete supplier")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete supplier")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "deleted",
		"supplier_id": supplierID,
	})
}
