package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"loggit/ledger"
	"loggit/middleware"
	"loggit/models"
	"loggit/storage"

	"github.com/go-chi/chi/v5"
)

type LedgerHandler struct {
	manager  *ledger.Manager
	failover *storage.Failover
}

func NewLedgerHandler(manager *ledger.Manager, failover *storage.Failover) *LedgerHandler {
	return &LedgerHandler{
		manager:  manager,
		failover: failover,
	}
}

type ledgerResponse struct {
	SubjectID string                `json:"subject_id"`
	Summaries []ledger.MonthSummary `json:"summaries"`
}

// Ledger returns the caller's own month summaries.
func (h *LedgerHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	h.serveLedger(w, r, "")
}

// SubjectLedger returns another subject's summaries, or the global view
// for the reserved GLOBAL_LEDGER id. Masters only, enforced by the
// manager's ownership check.
func (h *LedgerHandler) SubjectLedger(w http.ResponseWriter, r *http.Request) {
	h.serveLedger(w, r, chi.URLParam(r, "subjectID"))
}

func (h *LedgerHandler) serveLedger(w http.ResponseWriter, r *http.Request, subjectID string) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if subjectID == "" {
		subjectID = user.ID
	}

	summaries, err := h.manager.LedgerFor(r.Context(), user, subjectID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ledgerResponse{SubjectID: subjectID, Summaries: summaries})
}

var errNegativeBreak = errors.New("break minutes must be non-negative")

type entryRequest struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Date           string `json:"date"`
	TimeIn         string `json:"time_in"`
	TimeOut        string `json:"time_out"`
	MorningBreak   int    `json:"morning_break"`
	Lunch          int    `json:"lunch"`
	AfternoonBreak int    `json:"afternoon_break"`
}

func (req *entryRequest) toEntry() (models.WorkEntry, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return models.WorkEntry{}, err
	}
	if req.MorningBreak < 0 || req.Lunch < 0 || req.AfternoonBreak < 0 {
		return models.WorkEntry{}, errNegativeBreak
	}
	return models.WorkEntry{
		ID:             req.ID,
		UserID:         req.UserID,
		Date:           date,
		TimeIn:         req.TimeIn,
		TimeOut:        req.TimeOut,
		MorningBreak:   req.MorningBreak,
		Lunch:          req.Lunch,
		AfternoonBreak: req.AfternoonBreak,
	}, nil
}

func (h *LedgerHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry: "+err.Error())
		return
	}

	created, err := h.manager.CreateEntry(r.Context(), user, entry)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateEntry replaces an existing entry. The replacement may carry a new
// id; the prior record is deleted either way.
func (h *LedgerHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	replacesID := chi.URLParam(r, "id")

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry: "+err.Error())
		return
	}
	if entry.ID == "" {
		entry.ID = replacesID
	}

	updated, err := h.manager.ReplaceEntry(r.Context(), user, replacesID, entry)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *LedgerHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.manager.DeleteEntry(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type verificationRequest struct {
	SubjectID  string `json:"subject_id"`
	PeriodKey  string `json:"period_key"`
	IsVerified bool   `json:"is_verified"`
}

func (h *LedgerHandler) SetVerification(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req verificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubjectID == "" || !ledger.ValidPeriodKey(req.PeriodKey) {
		respondError(w, http.StatusBadRequest, "subject id and a MonthName Year period key are required")
		return
	}

	if err := h.manager.SetVerification(r.Context(), user, req.SubjectID, req.PeriodKey, req.IsVerified); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StorageStatus reports which storage tier is answering requests.
func (h *LedgerHandler) StorageStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]storage.Status{"status": h.failover.Status()})
}
