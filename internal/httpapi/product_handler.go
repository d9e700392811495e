package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/catalog"
)

type ProductHandler struct {
	products *catalog.Service
	log      *zap.Logger
}

func NewProductHandler(products *catalog.Service, log *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.Filter{
		Category:   q.Get("category"),
		Collection: q.Get("collection"),
		Gender:     q.Get("gender"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	products, err := h.products.List(r.Context(), filter)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var product catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	created, err := h.products.Create(r.Context(), &product)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input catalog.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	updated, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "product removed"})
}
