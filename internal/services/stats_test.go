package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/ledger/types"
)

func fillEvent(id common.Hash) types.OrderEvent {
	return types.OrderEvent{Kind: types.EventFill, OrderID: id}
}

func TestAggregateCounts(t *testing.T) {
	mock := client.NewMockClient()
	for i := 0; i < 10; i++ {
		id := common.HexToHash(fmt.Sprintf("0x%02x", i+1))
		mock.Events[types.EventOpen] = append(mock.Events[types.EventOpen], openEvent(id, uint64(i+1), wei(2)))
	}
	for i := 0; i < 4; i++ {
		mock.Events[types.EventFill] = append(mock.Events[types.EventFill], fillEvent(common.HexToHash(fmt.Sprintf("0x%02x", i+1))))
	}

	stats, err := NewStatsAggregator(mock, "TST").Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalOrders)
	assert.Equal(t, 4, stats.CompletedOrders)
	assert.Equal(t, 6, stats.PendingOrders)
	assert.Equal(t, "TST", stats.Symbol)
	assert.Equal(t, "20", stats.TotalVolume.String())
}

func TestAggregateSkipsEventsWithoutSpend(t *testing.T) {
	mock := client.NewMockClient()
	mock.Events[types.EventOpen] = []types.OrderEvent{
		openEvent(common.HexToHash("0x1"), 1, wei(5)),
		{Kind: types.EventOpen, OrderID: common.HexToHash("0x2")}, // no resolved payload
	}

	stats, err := NewStatsAggregator(mock, "TST").Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, "5", stats.TotalVolume.String())
}

func TestAggregateRejectsMoreFillsThanOpens(t *testing.T) {
	mock := client.NewMockClient()
	mock.Events[types.EventOpen] = []types.OrderEvent{openEvent(common.HexToHash("0x1"), 1, wei(1))}
	mock.Events[types.EventFill] = []types.OrderEvent{
		fillEvent(common.HexToHash("0x1")),
		fillEvent(common.HexToHash("0x2")),
	}

	_, err := NewStatsAggregator(mock, "TST").Aggregate(context.Background())
	assert.Error(t, err)
}

func TestAggregateFailsOnQueryError(t *testing.T) {
	mock := client.NewMockClient()
	mock.ErrorOnNext["QueryEvents"] = errors.New("rpc down")

	_, err := NewStatsAggregator(mock, "TST").Aggregate(context.Background())
	assert.Error(t, err)
}
