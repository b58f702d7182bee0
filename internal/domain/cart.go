package domain

// CartItem is one line of the cart. Lines are identified by the
// (ProductID, Size) pair: the same product in a different pack size is a
// separate line.
type CartItem struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
}

// LineKey is the composite identity of a cart line.
type LineKey struct {
	ProductID int64
	Size      string
}

func (i CartItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Size: i.Size}
}
