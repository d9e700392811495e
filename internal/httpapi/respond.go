package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fashionmart/storefront/internal/cart"
	"github.com/fashionmart/storefront/internal/catalog"
	"github.com/fashionmart/storefront/internal/checkout"
	"github.com/fashionmart/storefront/internal/orders"
	"github.com/fashionmart/storefront/internal/payment"
	"github.com/fashionmart/storefront/internal/subscribers"
	"github.com/fashionmart/storefront/internal/users"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zap.L().Error("failed to encode response", zap.Error(err))
		}
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondServiceError maps domain sentinels onto HTTP statuses. Anything
// unmapped is a 500 with a generic body so internals never leak to clients.
func respondServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidPrice),
		errors.Is(err, cart.ErrInvalidVariant),
		errors.Is(err, cart.ErrInvalidOwner),
		errors.Is(err, checkout.ErrInvalidItem),
		errors.Is(err, checkout.ErrIncompleteAddress),
		errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, users.ErrInvalidInput),
		errors.Is(err, subscribers.ErrInvalidEmail):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())

	case errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, checkout.ErrSessionNotFound),
		errors.Is(err, checkout.ErrNoOpenSession),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, orders.ErrNotOwner),
		errors.Is(err, users.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, cart.ErrEmptyGuestCart),
		errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())

	case errors.Is(err, checkout.ErrPaymentRequired):
		respondError(w, http.StatusPaymentRequired, "payment_required", err.Error())

	case errors.Is(err, checkout.ErrAlreadyFinalized),
		errors.Is(err, checkout.ErrStateConflict),
		errors.Is(err, cart.ErrStateConflict),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, subscribers.ErrAlreadySubscribed),
		errors.Is(err, orders.ErrDuplicateCheckout):
		respondError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, users.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())

	case errors.Is(err, payment.ErrDeclined):
		respondError(w, http.StatusPaymentRequired, "payment_declined", err.Error())

	case errors.Is(err, payment.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "payment_unavailable", "payment provider unavailable")

	default:
		log.Error("unhandled service error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
