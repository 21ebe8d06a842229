package client

import "github.com/pkg/errors"

var (
	// ErrNotFound means an order id referenced by an event has no stored
	// record (the pendingOrders slot is empty).
	ErrNotFound = errors.New("order not found")

	// ErrInvalidAddress means a malformed address was supplied; nothing was
	// sent over the wire.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrSessionRequired means a signing operation was attempted without a
	// connected signing account.
	ErrSessionRequired = errors.New("wallet session required")

	// ErrNoMatchingInstructions means a fill was requested for an order id
	// with no discoverable fill instructions in the event history.
	ErrNoMatchingInstructions = errors.New("no fill instructions found for order")

	// ErrRestartRequired means the chain changed underneath the session; the
	// process must be restarted against the new network.
	ErrRestartRequired = errors.New("network changed, restart required")
)
