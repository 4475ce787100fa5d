package engine

import "fmt"

// Validation is the advisory result of the pre-checkout gate. It never
// mutates the cart; the checkout flow decides what to do with it.
type Validation struct {
	Valid   bool     `json:"valid"`
	Reasons []string `json:"reasons"`
}

// ValidateItems checks that the cart is non-empty and that no item
// asks for more units than its stock ceiling allows.
func ValidateItems(items []LineItem) Validation {
	var reasons []string

	if len(items) == 0 {
		reasons = append(reasons, "cart is empty")
	}

	for _, it := range items {
		if it.Stock != nil && *it.Stock < it.Quantity {
			name := it.Title
			if name == "" {
				name = it.ID
			}
			reasons = append(reasons, fmt.Sprintf("%s: requested %d but only %d in stock", name, it.Quantity, *it.Stock))
		}
	}

	return Validation{Valid: len(reasons) == 0, Reasons: reasons}
}
