package domain

import "context"

// TradeOutcomeStore journals simulated trade outcomes.
type TradeOutcomeStore interface {
	Create(ctx context.Context, outcome TradeOutcome) error
	GetByID(ctx context.Context, id string) (TradeOutcome, error)
	ListRecent(ctx context.Context, limit int) ([]TradeOutcome, error)
}
