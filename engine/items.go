package engine

// LineItem is a single purchasable entry in the cart. UnitPrice is the
// effective price per unit after sale-price precedence has been applied
// at ingestion (see RawItem.Normalize).
type LineItem struct {
	ID        string  `json:"id" bson:"id"`
	Title     string  `json:"title" bson:"title"`
	UnitPrice float64 `json:"unitPrice" bson:"unitPrice"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Stock     *int    `json:"stock,omitempty" bson:"stock,omitempty"`
}

// RawItem is the loosely-shaped payload products and courses arrive as.
// Callers may fill either Title or Name, and either Price or SalePrice.
type RawItem struct {
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Name      string   `json:"name,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	SalePrice *float64 `json:"salePrice,omitempty"`
	Quantity  int      `json:"quantity,omitempty"`
	Stock     *int     `json:"stock,omitempty"`
}

// Normalize collapses the loose fields into a LineItem. SalePrice wins
// over Price, Title wins over Name, and a missing price becomes 0.
func (r RawItem) Normalize() LineItem {
	title := r.Title
	if title == "" {
		title = r.Name
	}

	price := 0.0
	switch {
	case r.SalePrice != nil:
		price = *r.SalePrice
	case r.Price != nil:
		price = *r.Price
	}

	qty := r.Quantity
	if qty < 1 {
		qty = 1
	}

	return LineItem{
		ID:        r.ID,
		Title:     title,
		UnitPrice: price,
		Quantity:  qty,
		Stock:     r.Stock,
	}
}
