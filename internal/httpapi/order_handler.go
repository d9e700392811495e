package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/orders"
)

type OrderHandler struct {
	orders *orders.Service
	log    *zap.Logger
}

func NewOrderHandler(svc *orders.Service, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: svc, log: log}
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	mine, err := h.orders.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, mine)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"), claims.UserID, claims.IsAdmin)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// Admin endpoints.

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, all)
}

type updateOrderRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), orders.Status(req.Status))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "order removed"})
}
