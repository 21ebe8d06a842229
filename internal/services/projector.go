package services

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/bridgebot/gowatch/internal/domain"
	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/ledger/types"
	"github.com/bridgebot/gowatch/pkg/logger"
)

// OrderProjector folds the ledger's Open history into the current order set.
// Each pass re-scans the full history and replaces the previous projection
// wholesale.
type OrderProjector struct {
	client client.Client
}

// NewOrderProjector builds a projector over a ledger client.
func NewOrderProjector(c client.Client) *OrderProjector {
	return &OrderProjector{client: c}
}

// Project returns the deduplicated order set in ledger emission order. The
// first Open event for an id wins; later duplicates are no-ops. An order
// whose point read fails is dropped from this pass without aborting the rest.
func (p *OrderProjector) Project(ctx context.Context) ([]domain.Order, error) {
	events, err := p.client.QueryEvents(ctx, types.EventOpen)
	if err != nil {
		return nil, errors.Wrap(err, "query open events")
	}

	seen := make(map[common.Hash]struct{}, len(events))
	orders := make([]domain.Order, 0, len(events))

	for _, ev := range events {
		if _, ok := seen[ev.OrderID]; ok {
			continue
		}
		seen[ev.OrderID] = struct{}{}

		raw, err := p.client.ReadOrder(ctx, ev.OrderID)
		if err != nil {
			logger.Warnf("[OrderProjector] drop order %s: %v", ev.OrderID.Hex(), err)
			continue
		}

		orders = append(orders, domain.Order{
			ID:         ev.OrderID.Hex(),
			Originator: raw.From.Hex(),
			Amount:     domain.FromWei(raw.OrderData.Amount),
			Status:     domain.OrderStatusPending,
		})
	}

	return orders, nil
}
