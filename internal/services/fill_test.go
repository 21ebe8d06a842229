package services

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/ledger/types"
)

func TestFillOrderSubmitsOnePerInstruction(t *testing.T) {
	var made []*client.MockClient
	session := connectedSession(t, &made)
	mock := made[0]

	id := common.HexToHash("0x1")
	mock.Events[types.EventOpen] = []types.OrderEvent{{
		Kind:    types.EventOpen,
		OrderID: id,
		Resolved: &types.ResolvedOrder{
			OrderID: id,
			FillInstructions: []types.FillInstruction{
				{DestinationChainID: 1, OriginData: []byte{0x01}},
				{DestinationChainID: 2, OriginData: []byte{0x02}},
			},
		},
	}}

	require.NoError(t, FillOrder(context.Background(), session, id))
	require.Len(t, mock.SubmittedFills, 2)
	assert.Equal(t, []byte{0x01}, mock.SubmittedFills[0].OriginData)
	assert.Equal(t, []byte{0x02}, mock.SubmittedFills[1].OriginData)
	assert.Equal(t, 2, mock.CallCount("AwaitConfirmation"))
}

func TestFillOrderUnknownID(t *testing.T) {
	var made []*client.MockClient
	session := connectedSession(t, &made)
	mock := made[0]

	err := FillOrder(context.Background(), session, common.HexToHash("0xdead"))
	assert.ErrorIs(t, err, client.ErrNoMatchingInstructions)
	assert.Empty(t, mock.SubmittedFills)
}

func TestFillOrderRequiresSession(t *testing.T) {
	s := NewSessionManager(&StaticWallet{}, client.NewMockClient(), nil)
	err := FillOrder(context.Background(), s, common.HexToHash("0x1"))
	assert.ErrorIs(t, err, client.ErrSessionRequired)
}
