package engine

// CouponType selects the discount strategy of an applied coupon.
type CouponType string

const (
	// CouponPercentage discounts a percentage of the subtotal.
	CouponPercentage CouponType = "percentage"
	// CouponFixed discounts a fixed amount, capped at the subtotal.
	CouponFixed CouponType = "fixed"
)

// Coupon is a validated discount applied to the cart. Codes are
// upper-cased before they are sent for validation.
type Coupon struct {
	Code  string     `json:"code" bson:"code"`
	Type  CouponType `json:"type" bson:"type"`
	Value float64    `json:"value" bson:"value"`
}
