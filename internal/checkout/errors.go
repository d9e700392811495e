package checkout

import "errors"

var (
	ErrEmptyCart         = errors.New("no items to check out")
	ErrInvalidItem       = errors.New("checkout item is missing a required field")
	ErrIncompleteAddress = errors.New("complete shipping address is required")
	ErrSessionNotFound   = errors.New("checkout session not found")
	ErrNoOpenSession     = errors.New("no open checkout session for user")
	ErrPaymentRequired   = errors.New("payment must be completed before finalizing")
	ErrAlreadyFinalized  = errors.New("checkout session is already finalized")
	ErrStateConflict     = errors.New("checkout session was modified concurrently")
)
