package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bridgebot/gowatch/internal/domain"
)

func makeOrders(n int) []domain.Order {
	orders := make([]domain.Order, n)
	for i := range orders {
		orders[i] = domain.Order{ID: fmt.Sprintf("0x%02x", i+1), Status: domain.OrderStatusPending}
	}
	return orders
}

func TestPageWindows(t *testing.T) {
	orders := makeOrders(12)

	window, totalPages := Page(orders, 5, 1)
	assert.Equal(t, 3, totalPages)
	assert.Len(t, window, 5)
	assert.Equal(t, "0x01", window[0].ID)
	assert.Equal(t, "0x05", window[4].ID)

	window, _ = Page(orders, 5, 3)
	assert.Len(t, window, 2)
	assert.Equal(t, "0x0b", window[0].ID)
	assert.Equal(t, "0x0c", window[1].ID)
}

func TestPageClampsOutOfRange(t *testing.T) {
	orders := makeOrders(12)

	window, totalPages := Page(orders, 5, 99)
	assert.Equal(t, 3, totalPages)
	assert.Len(t, window, 2)
	assert.Equal(t, "0x0b", window[0].ID)

	window, _ = Page(orders, 5, 0)
	assert.Equal(t, "0x01", window[0].ID)

	window, _ = Page(orders, 5, -3)
	assert.Equal(t, "0x01", window[0].ID)
}

func TestPageEmptySet(t *testing.T) {
	window, totalPages := Page(nil, 5, 1)
	assert.Equal(t, 1, totalPages)
	assert.Empty(t, window)
}

func TestPageExactMultiple(t *testing.T) {
	orders := makeOrders(10)
	window, totalPages := Page(orders, 5, 2)
	assert.Equal(t, 2, totalPages)
	assert.Len(t, window, 5)
	assert.Equal(t, "0x0a", window[4].ID)
}
