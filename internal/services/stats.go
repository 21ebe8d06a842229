package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/bridgebot/gowatch/internal/domain"
	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/ledger/types"
)

// StatsAggregator derives summary counters from the raw event history. It
// queries independently of the projector, so the two views can diverge when
// point reads fail.
type StatsAggregator struct {
	client client.Client
	symbol string
}

// NewStatsAggregator builds an aggregator; symbol labels the volume figure.
func NewStatsAggregator(c client.Client, symbol string) *StatsAggregator {
	return &StatsAggregator{client: c, symbol: symbol}
}

// Aggregate computes one Stats snapshot. More Fill events than Open events
// signals an inconsistent query and is reported as an error rather than a
// negative pending count.
func (a *StatsAggregator) Aggregate(ctx context.Context) (domain.Stats, error) {
	opens, err := a.client.QueryEvents(ctx, types.EventOpen)
	if err != nil {
		return domain.Stats{}, errors.Wrap(err, "query open events")
	}
	fills, err := a.client.QueryEvents(ctx, types.EventFill)
	if err != nil {
		return domain.Stats{}, errors.Wrap(err, "query fill events")
	}

	if len(fills) > len(opens) {
		return domain.Stats{}, errors.Errorf("inconsistent history: %d fills against %d opens", len(fills), len(opens))
	}

	volume := domain.FromWei(nil)
	for _, ev := range opens {
		if ev.Resolved == nil || len(ev.Resolved.MaxSpent) == 0 {
			continue
		}
		volume = volume.Add(domain.FromWei(ev.Resolved.MaxSpent[0].Amount))
	}

	return domain.Stats{
		TotalOrders:     len(opens),
		CompletedOrders: len(fills),
		PendingOrders:   len(opens) - len(fills),
		TotalVolume:     volume,
		Symbol:          a.symbol,
	}, nil
}
