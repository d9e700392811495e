package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/cart"
)

type CartHandler struct {
	carts *cart.Service
	log   *zap.Logger
}

func NewCartHandler(carts *cart.Service, log *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

// ownerFromRequest picks the cart identity: the signed-in user when a token
// is present, otherwise the guest id the storefront generated client-side.
func ownerFromRequest(r *http.Request, guestID string) (cart.Owner, bool) {
	if claims := claimsFromContext(r.Context()); claims != nil {
		return cart.UserOwner(claims.UserID), true
	}
	if guestID == "" {
		guestID = r.URL.Query().Get("guestId")
	}
	if guestID == "" {
		guestID = r.Header.Get("X-Guest-ID")
	}
	if guestID == "" {
		return cart.Owner{}, false
	}
	return cart.GuestOwner(guestID), true
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(r, "")
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_owner", "a user token or guestId is required")
		return
	}

	c, err := h.carts.GetCart(r.Context(), owner)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	GuestID   string `json:"guestId"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	owner, ok := ownerFromRequest(r, req.GuestID)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_owner", "a user token or guestId is required")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "productId is required")
		return
	}

	c, err := h.carts.AddItem(r.Context(), owner, cart.AddItemInput{
		ProductID: req.ProductID,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	owner, ok := ownerFromRequest(r, req.GuestID)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_owner", "a user token or guestId is required")
		return
	}

	key := cart.ItemKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	c, err := h.carts.SetItemQuantity(r.Context(), owner, key, req.Quantity)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	owner, ok := ownerFromRequest(r, req.GuestID)
	if !ok {
		respondError(w, http.StatusBadRequest, "missing_owner", "a user token or guestId is required")
		return
	}

	key := cart.ItemKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	c, err := h.carts.RemoveItem(r.Context(), owner, key)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

type mergeRequest struct {
	GuestID string `json:"guestId"`
}

// Merge folds a guest cart into the signed-in user's cart. Auth is required;
// the user id always comes from the token, never the body.
func (h *CartHandler) Merge(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.GuestID == "" {
		respondError(w, http.StatusBadRequest, "missing_guest_id", "guestId is required")
		return
	}

	c, err := h.carts.Merge(r.Context(), req.GuestID, claims.UserID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}
