package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// TradeOutcomeStore implements domain.TradeOutcomeStore using PostgreSQL.
type TradeOutcomeStore struct {
	pool *pgxpool.Pool
}

// NewTradeOutcomeStore creates a new TradeOutcomeStore.
func NewTradeOutcomeStore(pool *pgxpool.Pool) *TradeOutcomeStore {
	return &TradeOutcomeStore{pool: pool}
}

const outcomeColumns = `id, symbol, buy_venue, sell_venue, buy_price, sell_price,
	buy_fee_percent, sell_fee_percent, net_profit_percent, detected_at,
	notional, base_quantity, estimated_profit, status, started_at, completed_at`

// Create inserts an outcome and both of its legs in one transaction.
func (s *TradeOutcomeStore) Create(ctx context.Context, o domain.TradeOutcome) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	opp := o.Opportunity
	_, err = tx.Exec(ctx, `INSERT INTO trade_outcomes (`+outcomeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		o.ID, opp.Symbol, opp.BuyVenue, opp.SellVenue, opp.BuyPrice, opp.SellPrice,
		opp.BuyFeePercent, opp.SellFeePercent, opp.NetProfitPercent, opp.DetectedAt,
		o.Notional, o.BaseQuantity, o.EstimatedProfit, string(o.Status), o.StartedAt, o.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert trade_outcome %s: %w", o.ID, err)
	}

	for _, leg := range []domain.LegResult{o.BuyLeg, o.SellLeg} {
		var orderID, orderStatus *string
		if leg.Order != nil {
			orderID, orderStatus = &leg.Order.OrderID, &leg.Order.Status
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO trade_legs (trade_id, side, venue_id, symbol, quantity, order_id, order_status, error)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			o.ID, string(leg.Side), leg.VenueID, leg.Symbol, leg.Quantity, orderID, orderStatus, leg.Err,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert trade_leg %s/%s: %w", o.ID, leg.Side, err)
		}
	}
	return tx.Commit(ctx)
}

func scanOutcome(row pgx.Row) (domain.TradeOutcome, error) {
	var (
		o      domain.TradeOutcome
		status string
	)
	opp := &o.Opportunity
	err := row.Scan(&o.ID, &opp.Symbol, &opp.BuyVenue, &opp.SellVenue, &opp.BuyPrice, &opp.SellPrice,
		&opp.BuyFeePercent, &opp.SellFeePercent, &opp.NetProfitPercent, &opp.DetectedAt,
		&o.Notional, &o.BaseQuantity, &o.EstimatedProfit, &status, &o.StartedAt, &o.CompletedAt)
	o.Status = domain.TradeStatus(status)
	return o, err
}

// GetByID returns an outcome with its legs.
func (s *TradeOutcomeStore) GetByID(ctx context.Context, id string) (domain.TradeOutcome, error) {
	o, err := scanOutcome(s.pool.QueryRow(ctx,
		`SELECT `+outcomeColumns+` FROM trade_outcomes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TradeOutcome{}, domain.ErrNotFound
		}
		return domain.TradeOutcome{}, fmt.Errorf("postgres: get trade_outcome %s: %w", id, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT side, venue_id, symbol, quantity, order_id, order_status, error
		FROM trade_legs WHERE trade_id = $1 ORDER BY id`, id)
	if err != nil {
		return domain.TradeOutcome{}, fmt.Errorf("postgres: get trade_legs %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			leg                  domain.LegResult
			side                 string
			orderID, orderStatus *string
		)
		if err := rows.Scan(&side, &leg.VenueID, &leg.Symbol, &leg.Quantity, &orderID, &orderStatus, &leg.Err); err != nil {
			return domain.TradeOutcome{}, fmt.Errorf("postgres: scan trade_leg: %w", err)
		}
		leg.Side = domain.OrderSide(side)
		if orderID != nil {
			leg.Order = &domain.OrderResult{OrderID: *orderID, Quantity: leg.Quantity}
			if orderStatus != nil {
				leg.Order.Status = *orderStatus
			}
		}
		if leg.Side == domain.OrderSideBuy {
			o.BuyLeg = leg
		} else {
			o.SellLeg = leg
		}
	}
	if err := rows.Err(); err != nil {
		return domain.TradeOutcome{}, err
	}
	return o, nil
}

// ListRecent returns the most recent outcomes without legs.
func (s *TradeOutcomeStore) ListRecent(ctx context.Context, limit int) ([]domain.TradeOutcome, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+outcomeColumns+` FROM trade_outcomes ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trade_outcomes: %w", err)
	}
	defer rows.Close()

	var list []domain.TradeOutcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan trade_outcome: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// SumEstimatedProfit totals estimated profit of completed trades since t.
func (s *TradeOutcomeStore) SumEstimatedProfit(ctx context.Context, since time.Time) (float64, error) {
	var sum float64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(estimated_profit), 0) FROM trade_outcomes
		WHERE status = 'completed' AND started_at >= $1`, since).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("postgres: sum estimated profit: %w", err)
	}
	return sum, nil
}

// Compile-time interface check.
var _ domain.TradeOutcomeStore = (*TradeOutcomeStore)(nil)
