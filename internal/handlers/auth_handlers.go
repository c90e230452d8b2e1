package handlers

import (
	"encoding/json"
	"net/http"

	"chat-server/internal/auth"
	"chat-server/internal/models"

	"github.com/rs/zerolog"
)

type AuthHandlers struct {
	authService *auth.Service
	log         zerolog.Logger
}

func NewAuthHandlers(authService *auth.Service, log zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		log:         log,
	}
}

// Register handles POST /user/create.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.authService.Register(r.Context(), req.User, req.Password); err != nil {
		h.log.Warn().Err(err).Str("user", req.User).Msg("registration failed")
		http.Error(w, "could not create user", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Login handles POST /user/newToken and answers with a fresh JWT.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	token, err := h.authService.Login(r.Context(), req.User, req.Password)
	if err != nil {
		h.log.Warn().Err(err).Str("user", req.User).Msg("login failed")
		http.Error(w, "Username or password not correct", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}
