package adapthttp

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
)

const stateCookie = "oauth_state"

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled": s.identity.SSOEnabled(),
	})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if !s.identity.SSOEnabled() {
		writeError(w, http.StatusNotFound, "sso_disabled", errors.New("sso disabled"))
		return
	}
	state := generateState()
	authURL, err := s.identity.AuthCodeURL(state)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if !s.identity.SSOEnabled() {
		writeError(w, http.StatusNotFound, "sso_disabled", errors.New("sso disabled"))
		return
	}

	state, err := r.Cookie(stateCookie)
	if err != nil || r.URL.Query().Get("state") != state.Value {
		writeError(w, http.StatusBadRequest, "invalid_state", errors.New("invalid state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, MaxAge: -1, Path: "/"})

	user, err := s.identity.LoginWithProvider(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleGuestLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GuestID string `json:"guestId"`
		Email   string `json:"email"`
		Name    string `json:"name"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", err)
		return
	}

	user, err := s.identity.ResolveGuestIdentity(r.Context(), req.GuestID, req.Email, req.Name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
