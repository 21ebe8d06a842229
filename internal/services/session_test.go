package services

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgebot/gowatch/internal/domain"
	"github.com/bridgebot/gowatch/internal/events"
	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/ledger/types"
)

const testAccount = "0xabc0000000000000000000000000000000000abc"

func signingFactory(clients *[]*client.MockClient) ClientFactory {
	return func(account string) (client.Client, error) {
		c := client.NewMockClient()
		c.CanSign = true
		c.SigningAccount = common.HexToAddress(account)
		*clients = append(*clients, c)
		return c, nil
	}
}

func TestSilentCheckConnectsWithoutPrompt(t *testing.T) {
	var made []*client.MockClient
	wallet := &StaticWallet{Accounts: []string{testAccount}}
	readOnly := client.NewMockClient()

	s := NewSessionManager(wallet, readOnly, signingFactory(&made))
	require.NoError(t, s.CheckAuthorized(context.Background()))

	session := s.Session()
	assert.Equal(t, domain.SessionConnected, session.State)
	assert.Equal(t, testAccount, session.Account)
	require.Len(t, made, 1)
}

func TestSilentCheckEmptyStaysDisconnected(t *testing.T) {
	var made []*client.MockClient
	s := NewSessionManager(&StaticWallet{}, client.NewMockClient(), signingFactory(&made))
	require.NoError(t, s.CheckAuthorized(context.Background()))

	assert.Equal(t, domain.SessionDisconnected, s.Session().State)
	assert.Empty(t, made)
}

func TestSilentCheckErrorIsNotFatal(t *testing.T) {
	s := NewSessionManager(&StaticWallet{Err: errors.New("no wallet")}, client.NewMockClient(), nil)
	require.NoError(t, s.CheckAuthorized(context.Background()))
	assert.Equal(t, domain.SessionDisconnected, s.Session().State)
}

func TestConnectFailureRevertsToDisconnected(t *testing.T) {
	s := NewSessionManager(&StaticWallet{Err: errors.New("user rejected")}, client.NewMockClient(), nil)
	err := s.Connect(context.Background())
	assert.Error(t, err)
	assert.Equal(t, domain.SessionDisconnected, s.Session().State)
}

func TestSigningGuard(t *testing.T) {
	s := NewSessionManager(&StaticWallet{}, client.NewMockClient(), nil)
	_, err := s.SigningClient()
	assert.ErrorIs(t, err, client.ErrSessionRequired)
}

func TestAccountsChangedEmptyDisconnectsAndClearsBalance(t *testing.T) {
	var made []*client.MockClient
	wallet := &StaticWallet{Accounts: []string{testAccount}}
	s := NewSessionManager(wallet, client.NewMockClient(), signingFactory(&made))
	require.NoError(t, s.CheckAuthorized(context.Background()))

	made[0].Balances[testAccount] = wei(42)
	require.NoError(t, s.RefreshBalance(context.Background()))
	assert.Equal(t, "42", s.Session().Balance.String())

	require.NoError(t, s.HandleAccountsChanged(events.AccountsChangedEvent{}))
	session := s.Session()
	assert.Equal(t, domain.SessionDisconnected, session.State)
	assert.Empty(t, session.Account)
	assert.True(t, session.Balance.IsZero())
}

func TestAccountsChangedRebindsHandle(t *testing.T) {
	var made []*client.MockClient
	wallet := &StaticWallet{Accounts: []string{testAccount}}
	readOnly := client.NewMockClient()
	s := NewSessionManager(wallet, readOnly, signingFactory(&made))

	// mimic the scheduler: re-attach one subscription per kind on rebind
	s.OnRebind(func(c client.Client) {
		for _, kind := range types.AllEventKinds() {
			_ = c.Subscribe(kind, func(types.OrderEvent) {})
		}
	})

	require.NoError(t, s.CheckAuthorized(context.Background()))
	require.Len(t, made, 1)
	assert.Equal(t, 4, made[0].ActiveSubscriptions())

	next := "0xdef0000000000000000000000000000000000def"
	require.NoError(t, s.HandleAccountsChanged(events.AccountsChangedEvent{Accounts: []string{next}}))
	require.Len(t, made, 2)

	assert.Equal(t, 0, made[0].ActiveSubscriptions())
	assert.Equal(t, 4, made[1].ActiveSubscriptions())
	assert.Equal(t, next, s.Session().Account)
	assert.Same(t, made[1], s.Client().(*client.MockClient))
}

func TestChainChangedIsFatal(t *testing.T) {
	s := NewSessionManager(&StaticWallet{}, client.NewMockClient(), nil)
	err := s.HandleChainChanged(events.ChainChangedEvent{ChainID: 1})
	assert.ErrorIs(t, err, client.ErrRestartRequired)
}
