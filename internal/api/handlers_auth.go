package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hasdouaaa/dashboard-autops/internal/auth"
)

type credentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user and opens a session
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var input credentialsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.creds.Authenticate(input.Username, input.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	sess := h.sessions.Create(input.Username)

	token, err := h.auth.GenerateToken(input.Username, sess.ID)
	if err != nil {
		h.sessions.Delete(sess.ID)
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.auth.SetAuthCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]string{"username": input.Username},
	})
}

// Register adds a new account. Existing usernames are never overwritten.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var input credentialsInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.creds.Register(input.Username, input.Password)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, http.StatusConflict, "Username already taken")
		return
	case errors.Is(err, auth.ErrEmptyCredentials):
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user": map[string]string{"username": input.Username},
	})
}

// Logout closes the session and clears the cookie
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		h.sessions.Delete(claims.SessionID)
	}
	h.auth.ClearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// GetCurrentUser returns the logged-in user
func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": map[string]string{"username": claims.Username},
	})
}
