package domain

import "github.com/shopspring/decimal"

// Stats is one aggregation pass over the full order history.
type Stats struct {
	// TotalOrders counts every order ever opened.
	TotalOrders int `json:"totalOrders"`

	// CompletedOrders counts orders that have been filled.
	CompletedOrders int `json:"completedOrders"`

	// PendingOrders is TotalOrders minus CompletedOrders.
	PendingOrders int `json:"pendingOrders"`

	// TotalVolume sums the primary spend of every opened order, in
	// whole-token units.
	TotalVolume decimal.Decimal `json:"totalVolume"`

	// Symbol labels the volume figure.
	Symbol string `json:"symbol"`
}
