package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"loggit/ledger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondLedgerError maps the domain error taxonomy onto HTTP statuses.
// Lock and ownership violations are terminal for the request; nothing was
// mutated.
func respondLedgerError(w http.ResponseWriter, err error) {
	var locked *ledger.LockedPeriodError
	if errors.As(err, &locked) {
		respondError(w, http.StatusLocked, locked.Error())
		return
	}
	var unauthorized *ledger.UnauthorizedOwnershipError
	if errors.As(err, &unauthorized) {
		respondError(w, http.StatusForbidden, unauthorized.Error())
		return
	}
	if errors.Is(err, ledger.ErrEntryNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}
