package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// QuoteCache implements domain.QuoteCache using Redis hashes. Each quote is
// stored at "quote:{venue}:{symbol}" with fields "bid", "ask" and "ts"
// (Unix nanoseconds). A missing side is stored as an absent field.
type QuoteCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQuoteCache creates a QuoteCache. Keys expire after ttl when ttl > 0.
func NewQuoteCache(c *Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{rdb: c.Underlying(), ttl: ttl}
}

func quoteKey(k domain.QuoteKey) string {
	return "quote:" + k.VenueID + ":" + k.Symbol
}

// SetQuote replaces the cached quote for q's key.
func (qc *QuoteCache) SetQuote(ctx context.Context, q domain.Quote) error {
	key := quoteKey(q.Key())
	fields := map[string]interface{}{
		"ts": strconv.FormatInt(q.ObservedAt.UnixNano(), 10),
	}
	if bid, ok := q.BidPrice(); ok {
		fields["bid"] = strconv.FormatFloat(bid, 'f', -1, 64)
	}
	if ask, ok := q.AskPrice(); ok {
		fields["ask"] = strconv.FormatFloat(ask, 'f', -1, 64)
	}

	pipe := qc.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if qc.ttl > 0 {
		pipe.Expire(ctx, key, qc.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set quote %s: %w", key, err)
	}
	return nil
}

// GetQuote returns the cached quote, or domain.ErrNotFound.
func (qc *QuoteCache) GetQuote(ctx context.Context, k domain.QuoteKey) (domain.Quote, error) {
	key := quoteKey(k)
	vals, err := qc.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.Quote{}, fmt.Errorf("redis: get quote %s: %w", key, err)
	}
	if len(vals) == 0 {
		return domain.Quote{}, domain.ErrNotFound
	}

	q := domain.Quote{Symbol: k.Symbol, VenueID: k.VenueID}
	if s, ok := vals["bid"]; ok {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("redis: parse bid %s: %w", key, err)
		}
		q.Bid = &v
	}
	if s, ok := vals["ask"]; ok {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("redis: parse ask %s: %w", key, err)
		}
		q.Ask = &v
	}
	if s, ok := vals["ts"]; ok {
		ns, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("redis: parse ts %s: %w", key, err)
		}
		q.ObservedAt = time.Unix(0, ns)
	}
	return q, nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
