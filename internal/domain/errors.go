package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrLockHeld           = errors.New("lock already held")
	ErrRateLimited        = errors.New("rate limited")
	ErrUnknownVenue       = errors.New("unknown venue")
	ErrNoVenues           = errors.New("no usable venues configured")
	ErrVenueUnavailable   = errors.New("venue unavailable")
	ErrInvalidQuantity    = errors.New("invalid order quantity")
	ErrInvalidOpportunity = errors.New("invalid opportunity")
	ErrLegImbalance       = errors.New("leg imbalance: exactly one leg filled")
	ErrTradeFailed        = errors.New("trade failed: no leg filled")
	ErrJournalDisabled    = errors.New("trade journal disabled")
)
