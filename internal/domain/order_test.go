package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromWei(t *testing.T) {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(t, "1", FromWei(one).String())

	half := new(big.Int).Div(one, big.NewInt(2))
	assert.Equal(t, "0.5", FromWei(half).String())

	assert.True(t, FromWei(nil).IsZero())
}

func TestToWeiRoundtrip(t *testing.T) {
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(t, one, ToWei(FromWei(one)))
}
