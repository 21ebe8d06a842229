package client

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/bridgebot/gowatch/ledger/types"
	"github.com/bridgebot/gowatch/pkg/logger"
)

// logSubscription is one live event stream with its dispatch goroutine.
type logSubscription struct {
	kind   types.EventKind
	sub    ethereum.Subscription
	cancel context.CancelFunc
	done   chan struct{}
}

// Subscribe delivers events of one kind to the handler as the ledger emits
// them. Requires a websocket endpoint.
func (c *EthClient) Subscribe(kind types.EventKind, handler EventHandler) error {
	if c.ws == nil {
		return errors.New("no websocket endpoint configured")
	}
	if !kind.Valid() {
		return errors.Errorf("unknown event kind %q", kind)
	}

	ctx, cancel := context.WithCancel(context.Background())

	logs := make(chan ethtypes.Log, 64)
	query := ethereum.FilterQuery{
		Addresses: []common.Address{c.contract},
		Topics:    [][]common.Hash{{c.abi.Events[string(kind)].ID}},
	}
	sub, err := c.ws.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		cancel()
		return errors.Wrapf(err, "subscribe %s", kind)
	}

	ls := &logSubscription{
		kind:   kind,
		sub:    sub,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	c.subMu.Lock()
	c.subs = append(c.subs, ls)
	c.subMu.Unlock()

	go c.dispatch(ctx, ls, logs, handler)
	return nil
}

func (c *EthClient) dispatch(ctx context.Context, ls *logSubscription, logs <-chan ethtypes.Log, handler EventHandler) {
	defer close(ls.done)
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-ls.sub.Err():
			if err != nil {
				logger.Errorf("[LedgerClient] %s subscription dropped: %v", ls.kind, err)
			}
			return
		case lg := <-logs:
			ev, err := c.parseLog(ls.kind, lg)
			if err != nil {
				logger.Warnf("[LedgerClient] skip undecodable %s log: %v", ls.kind, err)
				continue
			}
			handler(ev)
		}
	}
}

// UnsubscribeAll tears down every active subscription and waits for their
// dispatch goroutines to drain. No handler runs after it returns.
func (c *EthClient) UnsubscribeAll() {
	c.subMu.Lock()
	subs := c.subs
	c.subs = nil
	c.subMu.Unlock()

	for _, ls := range subs {
		ls.sub.Unsubscribe()
		ls.cancel()
	}
	for _, ls := range subs {
		<-ls.done
	}
}
