package types

// Chain identifies an EVM chain by its chain id.
type Chain int64

const (
	// ChainLocal is the local anvil/hardhat devnet.
	ChainLocal Chain = 31337
	// ChainSepolia is the Sepolia testnet.
	ChainSepolia Chain = 11155111
)

// EventKind names one of the four order-lifecycle events emitted by the
// InteropToken contract.
type EventKind string

const (
	EventOpen    EventKind = "Open"
	EventFill    EventKind = "Fill"
	EventConfirm EventKind = "Confirm"
	EventCancel  EventKind = "Cancel"
)

// AllEventKinds lists the lifecycle events in declaration order.
func AllEventKinds() []EventKind {
	return []EventKind{EventOpen, EventFill, EventConfirm, EventCancel}
}

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventOpen, EventFill, EventConfirm, EventCancel:
		return true
	}
	return false
}
