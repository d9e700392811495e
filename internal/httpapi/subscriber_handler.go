package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/subscribers"
)

type SubscriberHandler struct {
	subs *subscribers.Service
	log  *zap.Logger
}

func NewSubscriberHandler(subs *subscribers.Service, log *zap.Logger) *SubscriberHandler {
	return &SubscriberHandler{subs: subs, log: log}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *SubscriberHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sub, err := h.subs.Subscribe(r.Context(), req.Email)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, sub)
}
