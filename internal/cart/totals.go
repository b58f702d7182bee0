package cart

import (
	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

// ShippingPolicy is the store's delivery pricing: a flat rate, waived
// once the subtotal reaches FreeAbove. FreeAbove <= 0 means shipping is
// never free.
type ShippingPolicy struct {
	FlatRate  float64
	FreeAbove float64
}

func (p ShippingPolicy) Cost(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	if p.FreeAbove > 0 && subtotal >= p.FreeAbove {
		return 0
	}
	return p.FlatRate
}

func LineSubtotal(item domain.CartItem) float64 {
	return item.Price * float64(item.Quantity)
}

func Subtotal(items []domain.CartItem) float64 {
	var sum float64
	for _, it := range items {
		sum += LineSubtotal(it)
	}
	return sum
}

func Total(items []domain.CartItem, shipping ShippingPolicy) float64 {
	sub := Subtotal(items)
	return sub + shipping.Cost(sub)
}
