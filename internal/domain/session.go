package domain

import "github.com/shopspring/decimal"

// SessionState is the wallet binding state of the engine.
type SessionState string

const (
	// SessionDisconnected means no account is bound; read paths still work.
	SessionDisconnected SessionState = "disconnected"

	// SessionConnecting means an authorization request is in flight.
	SessionConnecting SessionState = "connecting"

	// SessionConnected means a signing account is bound.
	SessionConnected SessionState = "connected"
)

// Session is a snapshot of the current wallet binding.
type Session struct {
	State   SessionState    `json:"state"`
	Account string          `json:"account,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}
