package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Output is one leg of a resolved cross-chain order: a token amount owed to
// a recipient on some chain. Token and recipient are bytes32 on the wire to
// admit non-EVM addresses.
type Output struct {
	Token     common.Hash `abi:"token"`
	Amount    *big.Int    `abi:"amount"`
	Recipient common.Hash `abi:"recipient"`
	ChainID   *big.Int    `abi:"chainId"`
}

// FillInstruction tells a filler what to execute on the destination chain.
type FillInstruction struct {
	DestinationChainID uint64      `abi:"destinationChainId"`
	DestinationSettler common.Hash `abi:"destinationSettler"`
	OriginData         []byte      `abi:"originData"`
}

// ResolvedOrder is the settler-resolved view of an order, carried in full on
// every Open event.
type ResolvedOrder struct {
	User             common.Address    `abi:"user"`
	OriginChainID    *big.Int          `abi:"originChainId"`
	OpenDeadline     uint32            `abi:"openDeadline"`
	FillDeadline     uint32            `abi:"fillDeadline"`
	OrderID          common.Hash       `abi:"orderId"`
	MaxSpent         []Output          `abi:"maxSpent"`
	MinReceived      []Output          `abi:"minReceived"`
	FillInstructions []FillInstruction `abi:"fillInstructions"`
}

// OrderEvent is one entry of the contract's event log. Ledger sequence is
// (BlockNumber, LogIndex); Resolved is set only for Open events, the other
// kinds carry the order id alone.
type OrderEvent struct {
	Kind        EventKind
	OrderID     common.Hash
	BlockNumber uint64
	LogIndex    uint
	Resolved    *ResolvedOrder
	TxHash      common.Hash
}

// OrderData is the user-supplied payload of an open order as stored on
// chain: who receives how much on which destination chain, and the fee.
type OrderData struct {
	Recipient common.Address `abi:"recipient"`
	Amount    *big.Int       `abi:"amount"`
	ToChain   uint64         `abi:"toChain"`
	FeeToken  common.Address `abi:"feeToken"`
	FeeValue  *big.Int       `abi:"feeValue"`
}

// RawOrder is the pendingOrders(orderId) storage record.
type RawOrder struct {
	From      common.Address
	OrderData OrderData
}

// OpenParams are the caller-supplied fields for opening a cross-chain
// transfer order. FillDeadline is a unix timestamp; zero means "one hour
// from now" chosen at submission time.
type OpenParams struct {
	Recipient    common.Address
	Amount       *big.Int
	ToChain      uint64
	FeeToken     common.Address
	FeeValue     *big.Int
	FillDeadline uint32
}
