package service

import "errors"

var (
	ErrEmptyCart  = errors.New("cart is empty, nothing to convert")
	ErrEmptyOrder = errors.New("order has no lines")

	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrMissingAddress       = errors.New("shipping and billing addresses are required")
	ErrMissingPaymentMethod = errors.New("payment method is required")
	ErrMissingTracking      = errors.New("tracking number and carrier are required to ship")
	ErrMissingReason        = errors.New("cancellation reason is required")

	ErrInvalidTransition      = errors.New("illegal order status transition")
	ErrForbidden              = errors.New("order belongs to another user")
	ErrConcurrentModification = errors.New("order changed concurrently")

	// ErrCollaboratorUnavailable is retryable: the caller should re-attempt
	// once the catalog or stock ledger is reachable again.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)
