package executor

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/venuearb/internal/domain"
)

// LegFunc issues one leg and reports its result. It never returns an error;
// failures are recorded on the LegResult.
type LegFunc func(ctx context.Context) domain.LegResult

// LegDispatcher decides how the buy and sell legs are issued relative to
// each other. Both legs are always issued.
type LegDispatcher interface {
	Dispatch(ctx context.Context, buy, sell LegFunc) (buyResult, sellResult domain.LegResult)
	Policy() domain.LegDispatch
}

// Sequential issues the buy leg, waits for it, then issues the sell leg.
type Sequential struct{}

func (Sequential) Dispatch(ctx context.Context, buy, sell LegFunc) (domain.LegResult, domain.LegResult) {
	b := buy(ctx)
	s := sell(ctx)
	return b, s
}

func (Sequential) Policy() domain.LegDispatch { return domain.LegDispatchSequential }

// Concurrent issues both legs at once and waits for both.
type Concurrent struct{}

func (Concurrent) Dispatch(ctx context.Context, buy, sell LegFunc) (domain.LegResult, domain.LegResult) {
	var (
		g    errgroup.Group
		b, s domain.LegResult
	)
	g.Go(func() error { b = buy(ctx); return nil })
	g.Go(func() error { s = sell(ctx); return nil })
	_ = g.Wait()
	return b, s
}

func (Concurrent) Policy() domain.LegDispatch { return domain.LegDispatchConcurrent }

// NewDispatcher returns the dispatcher for policy. An empty policy selects
// Sequential.
func NewDispatcher(policy string) (LegDispatcher, error) {
	switch domain.LegDispatch(strings.ToLower(policy)) {
	case "", domain.LegDispatchSequential:
		return Sequential{}, nil
	case domain.LegDispatchConcurrent:
		return Concurrent{}, nil
	default:
		return nil, fmt.Errorf("executor: unknown leg dispatch policy %q", policy)
	}
}
