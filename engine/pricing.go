package engine

import "math"

// ShippingMethod is the selected delivery option.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
	ShippingFree     ShippingMethod = "free"
)

// TaxRate is the flat tax applied to the discounted subtotal.
const TaxRate = 0.18

// FreeShippingThreshold is the discounted subtotal at or above which
// shipping costs nothing regardless of the selected method.
const FreeShippingThreshold = 50000.0

// ShippingRates maps each method to its flat cost in currency units.
var ShippingRates = map[ShippingMethod]float64{
	ShippingStandard: 2000,
	ShippingExpress:  5000,
	ShippingFree:     0,
}

// ValidShippingMethod reports whether m is one of the known methods.
func ValidShippingMethod(m ShippingMethod) bool {
	_, ok := ShippingRates[m]
	return ok
}

// Summary is the full derived price breakdown of a cart. It is never
// persisted; it is recomputed from the current items on every read.
type Summary struct {
	Subtotal              float64 `json:"subtotal"`
	Discount              float64 `json:"discount"`
	SubtotalAfterDiscount float64 `json:"subtotalAfterDiscount"`
	Taxes                 float64 `json:"taxes"`
	ShippingCost          float64 `json:"shippingCost"`
	Total                 float64 `json:"total"`
	ItemCount             int     `json:"itemCount"`
}

// Calculate derives the complete price breakdown for the given items,
// coupon and shipping selection. All accessors on the Engine go through
// this single computation so the individual figures can never drift
// from the aggregated summary.
func Calculate(items []LineItem, coupon *Coupon, method ShippingMethod) Summary {
	var subtotal float64
	var count int
	for _, it := range items {
		subtotal += it.UnitPrice * float64(it.Quantity)
		count += it.Quantity
	}

	var discount float64
	if coupon != nil {
		switch coupon.Type {
		case CouponPercentage:
			discount = subtotal * coupon.Value / 100
		case CouponFixed:
			// A fixed coupon can never push the total negative.
			discount = math.Min(coupon.Value, subtotal)
		}
	}

	after := math.Max(0, subtotal-discount)
	taxes := after * TaxRate

	shipping := ShippingRates[method]
	if after >= FreeShippingThreshold {
		shipping = 0
	}

	return Summary{
		Subtotal:              subtotal,
		Discount:              discount,
		SubtotalAfterDiscount: after,
		Taxes:                 taxes,
		ShippingCost:          shipping,
		Total:                 after + taxes + shipping,
		ItemCount:             count,
	}
}
