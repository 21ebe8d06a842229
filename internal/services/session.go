package services

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bridgebot/gowatch/internal/domain"
	"github.com/bridgebot/gowatch/internal/events"
	"github.com/bridgebot/gowatch/ledger/client"
	"github.com/bridgebot/gowatch/pkg/logger"
)

// Wallet is the external account authority: it answers which accounts are
// already authorized and can prompt the user for new authorization.
type Wallet interface {
	// Authorized returns the accounts already granted, without prompting.
	Authorized(ctx context.Context) ([]string, error)

	// RequestAccounts prompts the user and returns the granted accounts.
	RequestAccounts(ctx context.Context) ([]string, error)
}

// ClientFactory builds a signing-capable ledger client bound to an account.
type ClientFactory func(account string) (client.Client, error)

// SessionManager owns the wallet binding and the single shared ledger-client
// handle. Rebinding always tears down the old handle's subscriptions before
// the new handle is exposed, so notifications are never delivered twice.
type SessionManager struct {
	mu sync.Mutex

	wallet  Wallet
	factory ClientFactory

	state   domain.SessionState
	account string
	balance decimal.Decimal

	client client.Client

	// onRebind is invoked with the new handle after a swap; the scheduler
	// uses it to re-attach its subscriptions exactly once.
	onRebind func(client.Client)
}

// NewSessionManager starts Disconnected over a read-only ledger client.
func NewSessionManager(wallet Wallet, readOnly client.Client, factory ClientFactory) *SessionManager {
	return &SessionManager{
		wallet:  wallet,
		factory: factory,
		state:   domain.SessionDisconnected,
		client:  readOnly,
	}
}

// OnRebind registers the callback run after every client swap.
func (s *SessionManager) OnRebind(fn func(client.Client)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRebind = fn
}

// CheckAuthorized performs the silent startup check: if the wallet already
// holds authorized accounts, the session connects without user interaction.
func (s *SessionManager) CheckAuthorized(ctx context.Context) error {
	accounts, err := s.wallet.Authorized(ctx)
	if err != nil {
		logger.Warnf("[SessionManager] silent authorization check failed: %v", err)
		return nil
	}
	if len(accounts) == 0 {
		return nil
	}
	return s.bind(accounts[0])
}

// Connect prompts the wallet for authorization and binds the first granted
// account.
func (s *SessionManager) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.state == domain.SessionConnecting {
		s.mu.Unlock()
		return nil
	}
	s.state = domain.SessionConnecting
	s.mu.Unlock()

	accounts, err := s.wallet.RequestAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		s.mu.Lock()
		s.state = domain.SessionDisconnected
		s.mu.Unlock()
		if err != nil {
			return err
		}
		return client.ErrSessionRequired
	}
	return s.bind(accounts[0])
}

// Disconnect drops the account binding and the cached balance. Read paths
// keep working on the current handle.
func (s *SessionManager) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.SessionDisconnected
	s.account = ""
	s.balance = decimal.Zero
	logger.Info("[SessionManager] disconnected")
}

// HandleAccountsChanged reacts to a wallet account-set notification. A
// non-empty list is a full re-authentication against the first account; an
// empty list revokes the session.
func (s *SessionManager) HandleAccountsChanged(ev events.AccountsChangedEvent) error {
	if len(ev.Accounts) == 0 {
		s.Disconnect()
		return nil
	}
	return s.bind(ev.Accounts[0])
}

// HandleChainChanged is fatal: the session context was built for another
// network and the process must restart against the new one.
func (s *SessionManager) HandleChainChanged(ev events.ChainChangedEvent) error {
	logger.Errorf("[SessionManager] chain changed to %d, restart required", ev.ChainID)
	return client.ErrRestartRequired
}

// bind swaps the shared handle to a signing client for the account. The old
// handle's subscriptions are removed before the swap is visible.
func (s *SessionManager) bind(account string) error {
	signing, err := s.factory(account)
	if err != nil {
		s.mu.Lock()
		s.state = domain.SessionDisconnected
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	old := s.client
	s.client = signing
	s.state = domain.SessionConnected
	s.account = account
	rebind := s.onRebind
	s.mu.Unlock()

	if old != nil {
		old.UnsubscribeAll()
	}
	if rebind != nil {
		rebind(signing)
	}
	logger.Infof("[SessionManager] connected as %s", account)
	return nil
}

// Client returns the current shared ledger handle.
func (s *SessionManager) Client() client.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// SigningClient returns the handle only when a session account is bound.
func (s *SessionManager) SigningClient() (client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.SessionConnected {
		return nil, client.ErrSessionRequired
	}
	return s.client, nil
}

// RefreshBalance reads the bound account's balance into the session
// snapshot. A no-op while disconnected.
func (s *SessionManager) RefreshBalance(ctx context.Context) error {
	s.mu.Lock()
	account := s.account
	c := s.client
	connected := s.state == domain.SessionConnected
	s.mu.Unlock()

	if !connected {
		return nil
	}

	wei, err := c.ReadBalance(ctx, account)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == domain.SessionConnected && s.account == account {
		s.balance = domain.FromWei(wei)
	}
	s.mu.Unlock()
	return nil
}

// Session returns a snapshot of the current binding.
func (s *SessionManager) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Session{
		State:   s.state,
		Account: s.account,
		Balance: s.balance,
	}
}
