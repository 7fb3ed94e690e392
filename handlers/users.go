package handlers

import (
	"encoding/json"
	"net/http"

	"loggit/models"
	"loggit/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// UserHandler covers the master-only employee registry: create, edit,
// archive/restore and delete. Route guards enforce the master role before
// any of these run.
type UserHandler struct {
	store storage.Store
}

func NewUserHandler(store storage.Store) *UserHandler {
	return &UserHandler{store: store}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Tel      string `json:"tel"`
	Address  string `json:"address"`
	DOB      string `json:"dob"`
}

// CreateUser registers a new employee. The account starts active with no
// passcode; the employee sets one on first login.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.FullName == "" {
		respondError(w, http.StatusBadRequest, "username and full name are required")
		return
	}

	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	for _, u := range users {
		if u.Username == req.Username {
			respondError(w, http.StatusConflict, "username already taken")
			return
		}
	}

	user := models.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Tel:      req.Tel,
		Address:  req.Address,
		DOB:      req.DOB,
		Role:     models.RoleEmployee,
		Status:   models.StatusActive,
	}
	if err := h.store.PutUser(r.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch models.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.PatchUser(r.Context(), id, patch); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRequest struct {
	Status models.Status `json:"status"`
}

// SetUserStatus archives or restores an employee. Archiving blocks login
// and drops the employee's entries from the global ledger; history is
// kept.
func (h *UserHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != models.StatusActive && req.Status != models.StatusLeft {
		respondError(w, http.StatusBadRequest, "status must be active or left")
		return
	}

	patch := models.UserPatch{Status: &req.Status}
	if err := h.store.PatchUser(r.Context(), id, patch); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	for _, u := range users {
		if u.ID == id && u.IsMaster() {
			respondError(w, http.StatusForbidden, "cannot delete the master account")
			return
		}
	}

	if err := h.store.RemoveUser(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
