package services

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgebot/gowatch/internal/domain"
	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/ledger/types"
)

func wei(tokens int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(tokens), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func openEvent(id common.Hash, block uint64, maxSpent *big.Int) types.OrderEvent {
	return types.OrderEvent{
		Kind:        types.EventOpen,
		OrderID:     id,
		BlockNumber: block,
		Resolved: &types.ResolvedOrder{
			OrderID:  id,
			MaxSpent: []types.Output{{Amount: maxSpent}},
		},
	}
}

func seedOrder(mock *client.MockClient, id common.Hash, from common.Address, amount *big.Int) {
	mock.Orders[id] = &types.RawOrder{
		From: from,
		OrderData: types.OrderData{
			Recipient: common.HexToAddress("0xbEEF00000000000000000000000000000000bEEF"),
			Amount:    amount,
			ToChain:   11155111,
		},
	}
}

func TestProjectFoldsOpenHistory(t *testing.T) {
	mock := client.NewMockClient()
	id1 := common.HexToHash("0x1")
	id2 := common.HexToHash("0x2")
	from := common.HexToAddress("0xAbc0000000000000000000000000000000000001")

	mock.Events[types.EventOpen] = []types.OrderEvent{
		openEvent(id1, 1, wei(10)),
		openEvent(id2, 2, wei(3)),
	}
	seedOrder(mock, id1, from, wei(10))
	seedOrder(mock, id2, from, wei(3))

	orders, err := NewOrderProjector(mock).Project(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, id1.Hex(), orders[0].ID)
	assert.Equal(t, from.Hex(), orders[0].Originator)
	assert.True(t, orders[0].Amount.Equal(domain.FromWei(wei(10))))
	assert.Equal(t, domain.OrderStatusPending, orders[0].Status)
	assert.Equal(t, id2.Hex(), orders[1].ID)
}

func TestProjectIsIdempotent(t *testing.T) {
	mock := client.NewMockClient()
	id := common.HexToHash("0xa1")
	mock.Events[types.EventOpen] = []types.OrderEvent{openEvent(id, 1, wei(5))}
	seedOrder(mock, id, common.HexToAddress("0xAbc0000000000000000000000000000000000001"), wei(5))

	p := NewOrderProjector(mock)
	first, err := p.Project(context.Background())
	require.NoError(t, err)
	second, err := p.Project(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProjectDeduplicatesByID(t *testing.T) {
	mock := client.NewMockClient()
	id := common.HexToHash("0xA1")
	mock.Events[types.EventOpen] = []types.OrderEvent{
		openEvent(id, 1, wei(7)),
		openEvent(id, 2, wei(7)),
	}
	seedOrder(mock, id, common.HexToAddress("0xAbc0000000000000000000000000000000000001"), wei(7))

	orders, err := NewOrderProjector(mock).Project(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, id.Hex(), orders[0].ID)

	// one point read despite two events for the same id
	assert.Equal(t, 1, mock.Calls["ReadOrder"])
}

func TestProjectDropsOrderWhoseReadFails(t *testing.T) {
	mock := client.NewMockClient()
	id1 := common.HexToHash("0x1")
	id2 := common.HexToHash("0x2")
	id3 := common.HexToHash("0x3")
	from := common.HexToAddress("0xAbc0000000000000000000000000000000000001")

	mock.Events[types.EventOpen] = []types.OrderEvent{
		openEvent(id1, 1, wei(1)),
		openEvent(id2, 2, wei(2)),
		openEvent(id3, 3, wei(3)),
	}
	seedOrder(mock, id1, from, wei(1))
	seedOrder(mock, id3, from, wei(3))
	mock.ReadOrderErrors[id2] = errors.New("connection reset")

	orders, err := NewOrderProjector(mock).Project(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, id1.Hex(), orders[0].ID)
	assert.Equal(t, id3.Hex(), orders[1].ID)
}

func TestProjectFailsWhenQueryFails(t *testing.T) {
	mock := client.NewMockClient()
	mock.ErrorOnNext["QueryEvents"] = errors.New("rpc down")

	_, err := NewOrderProjector(mock).Project(context.Background())
	assert.Error(t, err)
}
