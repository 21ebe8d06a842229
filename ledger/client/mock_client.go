package client

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/bridgebot/gowatch/ledger/types"
)

// MockClient is an in-memory Client for tests. Every method records a call
// count, and any method can be made to fail once via ErrorOnNext.
type MockClient struct {
	mu sync.Mutex

	// Calls counts invocations per method name.
	Calls map[string]int

	// ErrorOnNext fails the next call of a method with the given error, then
	// clears itself.
	ErrorOnNext map[string]error

	// Events holds the canned history returned by QueryEvents, per kind.
	Events map[types.EventKind][]types.OrderEvent

	// Orders backs ReadOrder. Ids absent from the map return ErrNotFound.
	Orders map[common.Hash]*types.RawOrder

	// ReadOrderErrors fails ReadOrder for specific ids, persistently.
	ReadOrderErrors map[common.Hash]error

	// Balances backs ReadBalance, keyed by hex address.
	Balances map[string]*big.Int

	// SigningAccount is returned by Account when CanSign is set.
	SigningAccount common.Address
	CanSign        bool

	handlers map[types.EventKind][]EventHandler

	// SubmittedFills records (orderId, originData) pairs passed to FillOrder.
	SubmittedFills []FillCall

	// ConfirmedOrders records ids passed to ConfirmOrder.
	ConfirmedOrders []common.Hash

	Closed bool
}

// FillCall is one recorded FillOrder invocation.
type FillCall struct {
	OrderID    common.Hash
	OriginData []byte
}

// NewMockClient returns an empty mock ready for canned data.
func NewMockClient() *MockClient {
	return &MockClient{
		Calls:           make(map[string]int),
		ErrorOnNext:     make(map[string]error),
		Events:          make(map[types.EventKind][]types.OrderEvent),
		Orders:          make(map[common.Hash]*types.RawOrder),
		ReadOrderErrors: make(map[common.Hash]error),
		Balances:        make(map[string]*big.Int),
		handlers:        make(map[types.EventKind][]EventHandler),
	}
}

func (m *MockClient) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[method]++
	if err, ok := m.ErrorOnNext[method]; ok {
		delete(m.ErrorOnNext, method)
		return err
	}
	return nil
}

func (m *MockClient) QueryEvents(_ context.Context, kind types.EventKind) ([]types.OrderEvent, error) {
	if err := m.record("QueryEvents"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.OrderEvent, len(m.Events[kind]))
	copy(out, m.Events[kind])
	return out, nil
}

func (m *MockClient) ReadOrder(_ context.Context, id common.Hash) (*types.RawOrder, error) {
	if err := m.record("ReadOrder"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.ReadOrderErrors[id]; ok {
		return nil, err
	}
	raw, ok := m.Orders[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "order %s", id.Hex())
	}
	return raw, nil
}

func (m *MockClient) ReadBalance(_ context.Context, address string) (*big.Int, error) {
	if err := m.record("ReadBalance"); err != nil {
		return nil, err
	}
	if !common.IsHexAddress(address) {
		return nil, errors.Wrapf(ErrInvalidAddress, "%q", address)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if bal, ok := m.Balances[address]; ok {
		return new(big.Int).Set(bal), nil
	}
	return big.NewInt(0), nil
}

func (m *MockClient) Transfer(_ context.Context, recipient string, _ *big.Int) (*PendingTx, error) {
	if err := m.record("Transfer"); err != nil {
		return nil, err
	}
	if !m.CanSign {
		return nil, ErrSessionRequired
	}
	if !common.IsHexAddress(recipient) {
		return nil, errors.Wrapf(ErrInvalidAddress, "%q", recipient)
	}
	return &PendingTx{}, nil
}

func (m *MockClient) OpenOrder(_ context.Context, _ types.OpenParams) (*PendingTx, error) {
	if err := m.record("OpenOrder"); err != nil {
		return nil, err
	}
	if !m.CanSign {
		return nil, ErrSessionRequired
	}
	return &PendingTx{}, nil
}

func (m *MockClient) FillOrder(_ context.Context, id common.Hash, originData []byte) (*PendingTx, error) {
	if err := m.record("FillOrder"); err != nil {
		return nil, err
	}
	if !m.CanSign {
		return nil, ErrSessionRequired
	}
	m.mu.Lock()
	m.SubmittedFills = append(m.SubmittedFills, FillCall{OrderID: id, OriginData: originData})
	m.mu.Unlock()
	return &PendingTx{}, nil
}

func (m *MockClient) ConfirmOrder(_ context.Context, id common.Hash) (*PendingTx, error) {
	if err := m.record("ConfirmOrder"); err != nil {
		return nil, err
	}
	if !m.CanSign {
		return nil, ErrSessionRequired
	}
	m.mu.Lock()
	m.ConfirmedOrders = append(m.ConfirmedOrders, id)
	m.mu.Unlock()
	return &PendingTx{}, nil
}

func (m *MockClient) AwaitConfirmation(_ context.Context, _ *PendingTx) error {
	return m.record("AwaitConfirmation")
}

func (m *MockClient) Subscribe(kind types.EventKind, handler EventHandler) error {
	if err := m.record("Subscribe"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[kind] = append(m.handlers[kind], handler)
	return nil
}

func (m *MockClient) UnsubscribeAll() {
	m.record("UnsubscribeAll")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = make(map[types.EventKind][]EventHandler)
}

// FireEvent pushes an event through every handler subscribed to its kind,
// synchronously, the way tests drive push-delivered notifications.
func (m *MockClient) FireEvent(ev types.OrderEvent) {
	m.mu.Lock()
	handlers := make([]EventHandler, len(m.handlers[ev.Kind]))
	copy(handlers, m.handlers[ev.Kind])
	m.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// CallCount reports how many times a method has been invoked.
func (m *MockClient) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

// Confirmed returns a copy of the ids passed to ConfirmOrder.
func (m *MockClient) Confirmed() []common.Hash {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]common.Hash(nil), m.ConfirmedOrders...)
}

// ActiveSubscriptions reports how many handlers are currently attached.
func (m *MockClient) ActiveSubscriptions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, hs := range m.handlers {
		n += len(hs)
	}
	return n
}

func (m *MockClient) Account() (common.Address, bool) {
	if !m.CanSign {
		return common.Address{}, false
	}
	return m.SigningAccount, true
}

func (m *MockClient) Close() {
	m.record("Close")
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
}

var _ Client = (*MockClient)(nil)
