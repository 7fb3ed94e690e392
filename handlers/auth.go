package handlers

import (
	"encoding/json"
	"net/http"

	"loggit/config"
	"loggit/middleware"
	"loggit/models"
	"loggit/storage"

	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	config *config.Config
	auth   *middleware.Auth
	store  storage.Store
}

func NewAuthHandler(cfg *config.Config, auth *middleware.Auth, store storage.Store) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		auth:   auth,
		store:  store,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Passcode string `json:"passcode"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login verifies credentials and issues a session token. Accounts marked
// left are refused outright; accounts without a passcode must complete
// setup first.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.findByUsername(r, req.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !user.CanLogIn() {
		respondError(w, http.StatusUnauthorized, "access revoked by administration")
		return
	}
	if !user.PasscodeSet {
		respondError(w, http.StatusConflict, "passcode setup required")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasscodeHash), []byte(req.Passcode)); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.auth.GenerateToken(user, h.config.JWTExpiration)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, loginResponse{Token: token, User: *user})
}

type setupPasscodeRequest struct {
	Username string `json:"username"`
	DOB      string `json:"dob"`
	Passcode string `json:"passcode"`
}

// SetupPasscode activates an account created without a passcode. The date
// of birth on file acts as the one-time challenge.
func (h *AuthHandler) SetupPasscode(w http.ResponseWriter, r *http.Request) {
	var req setupPasscodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Passcode) < 4 {
		respondError(w, http.StatusBadRequest, "passcode must be at least 4 characters")
		return
	}

	user, err := h.findByUsername(r, req.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load users")
		return
	}
	if user == nil || !user.CanLogIn() {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if user.PasscodeSet {
		respondError(w, http.StatusConflict, "passcode already set")
		return
	}
	if user.DOB == "" || user.DOB != req.DOB {
		respondError(w, http.StatusUnauthorized, "security mismatch")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash passcode")
		return
	}

	hashStr := string(hash)
	set := true
	patch := models.UserPatch{PasscodeHash: &hashStr, PasscodeSet: &set}
	if err := h.store.PatchUser(r.Context(), user.ID, patch); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	user.PasscodeHash = hashStr
	user.PasscodeSet = true
	token, err := h.auth.GenerateToken(user, h.config.JWTExpiration)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, loginResponse{Token: token, User: *user})
}

type changePasscodeRequest struct {
	CurrentPasscode string `json:"current_passcode"`
	NewPasscode     string `json:"new_passcode"`
}

func (h *AuthHandler) ChangePasscode(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req changePasscodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasscodeHash), []byte(req.CurrentPasscode)); err != nil {
		respondError(w, http.StatusUnauthorized, "current passcode is incorrect")
		return
	}
	if len(req.NewPasscode) < 4 {
		respondError(w, http.StatusBadRequest, "passcode must be at least 4 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPasscode), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to hash passcode")
		return
	}

	hashStr := string(hash)
	set := true
	patch := models.UserPatch{PasscodeHash: &hashStr, PasscodeSet: &set}
	if err := h.store.PatchUser(r.Context(), user.ID, patch); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update passcode")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.JWTExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) findByUsername(r *http.Request, username string) (*models.User, error) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, nil
}
