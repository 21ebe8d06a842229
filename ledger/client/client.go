package client

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/bridgebot/gowatch/ledger/types"
)

// EventHandler receives push-delivered ledger events.
type EventHandler func(event types.OrderEvent)

// Client is the ledger collaborator the engine depends on. Event queries
// always return the full history in emission order; there is no cursor.
type Client interface {
	QueryEvents(ctx context.Context, kind types.EventKind) ([]types.OrderEvent, error)
	ReadOrder(ctx context.Context, id common.Hash) (*types.RawOrder, error)
	ReadBalance(ctx context.Context, address string) (*big.Int, error)

	Transfer(ctx context.Context, recipient string, amount *big.Int) (*PendingTx, error)
	OpenOrder(ctx context.Context, params types.OpenParams) (*PendingTx, error)
	FillOrder(ctx context.Context, id common.Hash, originData []byte) (*PendingTx, error)
	ConfirmOrder(ctx context.Context, id common.Hash) (*PendingTx, error)
	AwaitConfirmation(ctx context.Context, tx *PendingTx) error

	Subscribe(kind types.EventKind, handler EventHandler) error
	UnsubscribeAll()

	// Account returns the signing identity, if the client can sign.
	Account() (common.Address, bool)
	Close()
}

// EthClient talks to the InteropToken contract over JSON-RPC. A client built
// without a private key is read-only; signing operations fail with
// ErrSessionRequired.
type EthClient struct {
	http     *ethclient.Client
	ws       *ethclient.Client
	contract common.Address
	chainID  *big.Int
	abi      abi.ABI

	privateKey *ecdsa.PrivateKey
	account    common.Address

	subMu sync.Mutex
	subs  []*logSubscription
}

// Options configure an EthClient.
type Options struct {
	RPCURL          string
	WSURL           string // optional; empty disables Subscribe
	ContractAddress string
	ChainID         int64
	PrivateKey      *ecdsa.PrivateKey // optional; nil builds a read-only client
}

// NewEthClient dials the ledger and prepares the contract ABI. An empty
// contract address falls back to the known deployment for the chain.
func NewEthClient(opts Options) (*EthClient, error) {
	if opts.ContractAddress == "" {
		cc, err := GetContractConfig(types.Chain(opts.ChainID))
		if err != nil {
			return nil, err
		}
		opts.ContractAddress = cc.InteropToken
	}
	if !common.IsHexAddress(opts.ContractAddress) {
		return nil, errors.Wrapf(ErrInvalidAddress, "contract %q", opts.ContractAddress)
	}

	httpClient, err := ethclient.Dial(opts.RPCURL)
	if err != nil {
		return nil, errors.Wrap(err, "dial rpc")
	}

	var wsClient *ethclient.Client
	if opts.WSURL != "" {
		wsClient, err = ethclient.Dial(opts.WSURL)
		if err != nil {
			httpClient.Close()
			return nil, errors.Wrap(err, "dial ws")
		}
	}

	parsed, err := abi.JSON(strings.NewReader(InteropTokenABI))
	if err != nil {
		httpClient.Close()
		if wsClient != nil {
			wsClient.Close()
		}
		return nil, errors.Wrap(err, "parse contract abi")
	}

	c := &EthClient{
		http:     httpClient,
		ws:       wsClient,
		contract: common.HexToAddress(opts.ContractAddress),
		chainID:  big.NewInt(opts.ChainID),
		abi:      parsed,
	}
	if opts.PrivateKey != nil {
		c.privateKey = opts.PrivateKey
		c.account = crypto.PubkeyToAddress(opts.PrivateKey.PublicKey)
	}
	return c, nil
}

// Account returns the signing address when a key is bound.
func (c *EthClient) Account() (common.Address, bool) {
	if c.privateKey == nil {
		return common.Address{}, false
	}
	return c.account, true
}

// Close tears down subscriptions and RPC connections. In-flight queries are
// left to fail on their own.
func (c *EthClient) Close() {
	c.UnsubscribeAll()
	c.http.Close()
	if c.ws != nil {
		c.ws.Close()
	}
}

// QueryEvents returns the full event history of one kind, from genesis, in
// ledger emission order.
func (c *EthClient) QueryEvents(ctx context.Context, kind types.EventKind) ([]types.OrderEvent, error) {
	if !kind.Valid() {
		return nil, errors.Errorf("unknown event kind %q", kind)
	}

	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(0),
		Addresses: []common.Address{c.contract},
		Topics:    [][]common.Hash{{c.abi.Events[string(kind)].ID}},
	}
	logs, err := c.http.FilterLogs(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s events", kind)
	}

	events := make([]types.OrderEvent, 0, len(logs))
	for _, lg := range logs {
		ev, err := c.parseLog(kind, lg)
		if err != nil {
			// A log we cannot decode is a contract/ABI mismatch, not a
			// transient condition; skip it rather than fail the query.
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (c *EthClient) parseLog(kind types.EventKind, lg ethtypes.Log) (types.OrderEvent, error) {
	if len(lg.Topics) < 2 {
		return types.OrderEvent{}, errors.Errorf("%s log missing orderId topic", kind)
	}
	ev := types.OrderEvent{
		Kind:        kind,
		OrderID:     lg.Topics[1],
		BlockNumber: lg.BlockNumber,
		LogIndex:    lg.Index,
		TxHash:      lg.TxHash,
	}
	if kind == types.EventOpen {
		var payload struct {
			ResolvedOrder types.ResolvedOrder `abi:"resolvedOrder"`
		}
		if err := c.abi.UnpackIntoInterface(&payload, "Open", lg.Data); err != nil {
			return types.OrderEvent{}, errors.Wrap(err, "unpack Open payload")
		}
		ev.Resolved = &payload.ResolvedOrder
	}
	return ev, nil
}

// ReadOrder fetches the pendingOrders storage record for an order id. An
// all-zero record means the ledger holds nothing under that id.
func (c *EthClient) ReadOrder(ctx context.Context, id common.Hash) (*types.RawOrder, error) {
	data, err := c.abi.Pack("pendingOrders", id)
	if err != nil {
		return nil, errors.Wrap(err, "pack pendingOrders")
	}

	result, err := c.http.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "read order %s", id.Hex())
	}

	var raw types.RawOrder
	if err := c.abi.UnpackIntoInterface(&raw, "pendingOrders", result); err != nil {
		return nil, errors.Wrap(err, "unpack pendingOrders result")
	}
	if raw.From == (common.Address{}) {
		return nil, errors.Wrapf(ErrNotFound, "order %s", id.Hex())
	}
	return &raw, nil
}

// ReadBalance returns the token balance of an address. The address is
// validated before anything touches the wire.
func (c *EthClient) ReadBalance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, errors.Wrapf(ErrInvalidAddress, "%q", address)
	}

	data, err := c.abi.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return nil, errors.Wrap(err, "pack balanceOf")
	}

	result, err := c.http.CallContract(ctx, ethereum.CallMsg{
		To:   &c.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "read balance")
	}

	var balance *big.Int
	if err := c.abi.UnpackIntoInterface(&balance, "balanceOf", result); err != nil {
		return nil, errors.Wrap(err, "unpack balanceOf result")
	}
	return balance, nil
}
