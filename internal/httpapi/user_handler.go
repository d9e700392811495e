package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/users"
)

type UserHandler struct {
	users  *users.Service
	tokens *users.TokenIssuer
	log    *zap.Logger
}

func NewUserHandler(svc *users.Service, tokens *users.TokenIssuer, log *zap.Logger) *UserHandler {
	return &UserHandler{users: svc, tokens: tokens, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	user, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Admin endpoints.

func (h *UserHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.users.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, all)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

type updateUserRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	IsAdmin *bool   `json:"isAdmin"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "id"), users.UpdateInput{
		Name:    req.Name,
		Email:   req.Email,
		IsAdmin: req.IsAdmin,
	})
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "user removed"})
}
