package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/cart"
	"github.com/fashionmart/storefront/internal/checkout"
	"github.com/fashionmart/storefront/internal/payment"
)

type CheckoutHandler struct {
	checkouts *checkout.Service
	carts     *cart.Service
	charger   payment.Charger
	log       *zap.Logger
}

func NewCheckoutHandler(checkouts *checkout.Service, carts *cart.Service, charger payment.Charger, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts, carts: carts, charger: charger, log: log}
}

type createCheckoutRequest struct {
	ShippingAddress checkout.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                   `json:"paymentMethod"`
}

// Create opens a session from the user's current cart. The items and total
// are snapshotted server-side; the client only supplies address and method.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req createCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	userCart, err := h.carts.GetCart(r.Context(), cart.UserOwner(claims.UserID))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	items := make([]checkout.SessionItem, len(userCart.Items))
	for i, it := range userCart.Items {
		items[i] = checkout.SessionItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			ImageURL:  it.ImageURL,
			UnitPrice: it.UnitPrice,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
		}
	}

	session, err := h.checkouts.Create(r.Context(), claims.UserID, checkout.CreateInput{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalPrice:      userCart.TotalPrice,
	})
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

// Pay charges the user's open session through the payment gateway and records
// the outcome. A decline marks the session failed; a provider outage leaves
// it open for a retry.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	ctx := r.Context()

	session, err := h.checkouts.LatestOpen(ctx, claims.UserID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	result, err := h.charger.Charge(ctx, payment.ChargeRequest{
		CheckoutID: session.ID,
		Amount:     session.TotalPrice,
		Method:     session.PaymentMethod,
	})
	if err != nil {
		if errors.Is(err, payment.ErrDeclined) {
			details := map[string]interface{}{"status": "declined"}
			if result != nil {
				details["transactionId"] = result.TransactionID
				details["reason"] = result.Reason
			}
			if _, markErr := h.checkouts.MarkFailed(ctx, claims.UserID, details); markErr != nil {
				respondServiceError(w, h.log, markErr)
				return
			}
		}
		respondServiceError(w, h.log, err)
		return
	}

	details := map[string]interface{}{
		"transactionId": result.TransactionID,
		"status":        result.Status,
	}
	session, err = h.checkouts.MarkPaid(ctx, claims.UserID, details)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// Finalize converts a paid session into an order via the outbox. The cart is
// cleared only after the session is finalized.
func (h *CheckoutHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	session, err := h.checkouts.Finalize(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	if err := h.carts.Clear(r.Context(), cart.UserOwner(claims.UserID)); err != nil {
		// The order is already on its way; an empty-cart miss is fine.
		if !errors.Is(err, cart.ErrCartNotFound) {
			h.log.Warn("failed to clear cart after finalize",
				zap.String("user_id", claims.UserID), zap.Error(err))
		}
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	session, err := h.checkouts.Get(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	if session.UserID != claims.UserID && !claims.IsAdmin {
		respondError(w, http.StatusNotFound, "not_found", "checkout session not found")
		return
	}
	respondJSON(w, http.StatusOK, session)
}
