// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anshikarawat07/lifelink/internal/model"
	"github.com/anshikarawat07/lifelink/internal/repository"
	"github.com/anshikarawat07/lifelink/internal/service"
	"github.com/go-chi/chi/v5"
)

// BloodBankHandler holds all HTTP handlers for the blood bank API.
type BloodBankHandler struct {
	svc *service.BloodBank
}

// New constructs a BloodBankHandler.
func New(svc *service.BloodBank) *BloodBankHandler {
	return &BloodBankHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ─── Donors ───────────────────────────────────────────────────────────────────

// CreateDonor handles POST /donors
func (h *BloodBankHandler) CreateDonor(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDonorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	donor, err := h.svc.CreateDonor(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, donor)
}

// ListDonors handles GET /donors
func (h *BloodBankHandler) ListDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := h.svc.ListDonors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list donors")
		return
	}
	if donors == nil {
		donors = []model.Donor{}
	}
	writeJSON(w, http.StatusOK, donors)
}

// GetDonor handles GET /donors/{id}
func (h *BloodBankHandler) GetDonor(w http.ResponseWriter, r *http.Request) {
	donor, err := h.svc.GetDonor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "donor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get donor")
		return
	}
	writeJSON(w, http.StatusOK, donor)
}

// DeleteDonor handles DELETE /donors/{id}
func (h *BloodBankHandler) DeleteDonor(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteDonor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "donor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete donor")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DonorDonations handles GET /donors/{id}/donations
func (h *BloodBankHandler) DonorDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.svc.DonorDonations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "donor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list donations")
		return
	}
	if donations == nil {
		donations = []model.Donation{}
	}
	writeJSON(w, http.StatusOK, donations)
}

// ─── Recipients ───────────────────────────────────────────────────────────────

// CreateRecipient handles POST /recipients
func (h *BloodBankHandler) CreateRecipient(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRecipientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	recipient, err := h.svc.CreateRecipient(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, recipient)
}

// ListRecipients handles GET /recipients
func (h *BloodBankHandler) ListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.svc.ListRecipients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list recipients")
		return
	}
	if recipients == nil {
		recipients = []model.Recipient{}
	}
	writeJSON(w, http.StatusOK, recipients)
}

// ─── Camps ────────────────────────────────────────────────────────────────────

// CreateCamp handles POST /camps
func (h *BloodBankHandler) CreateCamp(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCampRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	camp, err := h.svc.CreateCamp(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, camp)
}

// ListCamps handles GET /camps
func (h *BloodBankHandler) ListCamps(w http.ResponseWriter, r *http.Request) {
	camps, err := h.svc.ListCamps(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list camps")
		return
	}
	if camps == nil {
		camps = []model.Camp{}
	}
	writeJSON(w, http.StatusOK, camps)
}

// GetCamp handles GET /camps/{id}
func (h *BloodBankHandler) GetCamp(w http.ResponseWriter, r *http.Request) {
	camp, err := h.svc.GetCamp(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "camp not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get camp")
		return
	}
	writeJSON(w, http.StatusOK, camp)
}

// CampRegistrations handles GET /camps/{id}/registrations
func (h *BloodBankHandler) CampRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.CampRegistrations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "camp not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}
	if regs == nil {
		regs = []model.CampRegistration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// RegisterForCamp handles POST /camps/{id}/register
// Registers a person for a camp and records their donation atomically.
func (h *BloodBankHandler) RegisterForCamp(w http.ResponseWriter, r *http.Request) {
	var req model.CampRegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	reg, err := h.svc.RegisterForCamp(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "camp not found")
		case errors.Is(err, repository.ErrDuplicateRegistration):
			writeError(w, http.StatusConflict, "already registered for this camp")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// ─── Donations ────────────────────────────────────────────────────────────────

// RecordDonation handles POST /donations
func (h *BloodBankHandler) RecordDonation(w http.ResponseWriter, r *http.Request) {
	var req model.RecordDonationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	donation, err := h.svc.RecordDonation(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "donor or camp not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, donation)
}

// ListDonations handles GET /donations
func (h *BloodBankHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	donations, err := h.svc.ListDonations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list donations")
		return
	}
	if donations == nil {
		donations = []model.Donation{}
	}
	writeJSON(w, http.StatusOK, donations)
}

// ─── Requests ─────────────────────────────────────────────────────────────────

// FulfillRequest handles POST /requests
// Allocates available stock to the request, possibly partially.
func (h *BloodBankHandler) FulfillRequest(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBloodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	request, err := h.svc.FulfillRequest(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

// ListRequests handles GET /requests
func (h *BloodBankHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.ListRequests(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	if requests == nil {
		requests = []model.Request{}
	}
	writeJSON(w, http.StatusOK, requests)
}

// ─── Stock & dashboard ────────────────────────────────────────────────────────

// StockSnapshot handles GET /stock
func (h *BloodBankHandler) StockSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.svc.StockSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read stock")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// ListStock handles GET /stock/entries
func (h *BloodBankHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListStock(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read stock")
		return
	}
	if entries == nil {
		entries = []model.StockEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Dashboard handles GET /dashboard
func (h *BloodBankHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
