package events

import (
	"time"

	"github.com/bridgebot/gowatch/internal/domain"
)

// AccountsChangedEvent is raised when the wallet reports a new account set.
// An empty list means the user revoked authorization.
type AccountsChangedEvent struct {
	Accounts  []string
	Timestamp time.Time
}

// ChainChangedEvent is raised when the wallet switches networks. The session
// context built for the old chain is unusable afterwards.
type ChainChangedEvent struct {
	ChainID   int64
	Timestamp time.Time
}

// SnapshotEvent carries the read model produced by one applied
// reconciliation pass.
type SnapshotEvent struct {
	Sequence  uint64         `json:"sequence"`
	Orders    []domain.Order `json:"orders"`
	Stats     domain.Stats   `json:"stats"`
	Session   domain.Session `json:"session"`
	Timestamp time.Time      `json:"timestamp"`
}
