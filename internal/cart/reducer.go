// Package cart holds the pure state transitions for the shopping cart.
// Every function returns a new slice and leaves its input untouched;
// callers persist the result through the store.
package cart

import (
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

// AddItem merges the candidate into the cart. A line with the same
// (ProductID, Size) has its quantity increased; otherwise the candidate
// is appended at the end, preserving insertion order. A candidate
// quantity below 1 counts as 1.
func AddItem(items []domain.CartItem, item domain.CartItem) []domain.CartItem {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	next := make([]domain.CartItem, len(items))
	copy(next, items)

	for i := range next {
		if next[i].Key() == item.Key() {
			next[i].Quantity += item.Quantity
			return next
		}
	}

	return append(next, item)
}

// SetQuantity replaces the quantity of the matching line. Quantities are
// clamped to a minimum of 1; removal is always an explicit RemoveItem,
// never an implicit zero.
func SetQuantity(items []domain.CartItem, productID int64, size string, quantity int) []domain.CartItem {
	if quantity < 1 {
		quantity = 1
	}

	key := domain.LineKey{ProductID: productID, Size: size}
	next := make([]domain.CartItem, len(items))
	copy(next, items)

	for i := range next {
		if next[i].Key() == key {
			next[i].Quantity = quantity
			break
		}
	}

	return next
}

// RemoveItem drops the matching line. Removing a line that does not
// exist returns a cart equal to the input.
func RemoveItem(items []domain.CartItem, productID int64, size string) []domain.CartItem {
	key := domain.LineKey{ProductID: productID, Size: size}

	next := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.Key() == key {
			continue
		}
		next = append(next, it)
	}

	return next
}
