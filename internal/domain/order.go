package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle stage of a mirrored order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusFilled    OrderStatus = "Filled"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Order is one cross-chain order as mirrored from the ledger. Amount is in
// whole-token units, already scaled down from wei.
type Order struct {
	ID         string          `json:"id"`
	Originator string          `json:"originator"`
	Amount     decimal.Decimal `json:"amount"`
	Status     OrderStatus     `json:"status"`
}

// tokenScale is the ERC-20 precision of the mirrored token.
const tokenScale = 18

// FromWei converts a raw on-chain amount into whole-token units.
func FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -tokenScale)
}

// ToWei converts a whole-token amount into the on-chain fixed-point integer.
func ToWei(amount decimal.Decimal) *big.Int {
	return amount.Shift(tokenScale).BigInt()
}
