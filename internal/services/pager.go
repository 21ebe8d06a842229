package services

import "github.com/bridgebot/gowatch/internal/domain"

// Page windows the projected order list for display. The page number is
// clamped to [1, totalPages]; an empty set still has one (empty) page.
func Page(orders []domain.Order, pageSize, pageNumber int) ([]domain.Order, int) {
	if pageSize <= 0 {
		pageSize = 1
	}

	totalPages := (len(orders) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageNumber > totalPages {
		pageNumber = totalPages
	}

	start := (pageNumber - 1) * pageSize
	if start >= len(orders) {
		return []domain.Order{}, totalPages
	}
	end := start + pageSize
	if end > len(orders) {
		end = len(orders)
	}
	return orders[start:end], totalPages
}
