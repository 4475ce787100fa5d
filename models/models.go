package models

import (
	"time"

	"kourso/engine"
)

// User is an account document.
type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email,omitempty" bson:"email,omitempty"`
	Password      string    `json:"password,omitempty" bson:"password"`
	Role          []string  `json:"role" bson:"role"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"-" bson:"last_login,omitempty"`
}

// CartDoc is the server-side cart for an authenticated user: one
// document per user, replaced wholesale on every save.
type CartDoc struct {
	UserID    string            `json:"userId" bson:"userId"`
	Items     []engine.LineItem `json:"items" bson:"items"`
	Coupon    *engine.Coupon    `json:"coupon" bson:"coupon"`
	UpdatedAt time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// CouponDoc is a redeemable coupon definition.
type CouponDoc struct {
	Code      string            `json:"code" bson:"code"`
	Type      engine.CouponType `json:"type" bson:"type"`
	Value     float64           `json:"value" bson:"value"`
	MinSpend  float64           `json:"minSpend,omitempty" bson:"minSpend,omitempty"`
	ExpiresAt time.Time         `json:"expiresAt" bson:"expiresAt"`
	Active    bool              `json:"active" bson:"active"`
}

// Order is a finalized order with its price breakdown frozen at
// checkout time.
type Order struct {
	OrderID        string                `json:"orderId" bson:"orderId"`
	UserID         string                `json:"userId" bson:"userId"`
	Items          []engine.LineItem     `json:"items" bson:"items"`
	Coupon         *engine.Coupon        `json:"coupon,omitempty" bson:"coupon,omitempty"`
	ShippingMethod engine.ShippingMethod `json:"shippingMethod" bson:"shippingMethod"`
	Summary        engine.Summary        `json:"summary" bson:"summary"`
	Address        string                `json:"address,omitempty" bson:"address,omitempty"`
	PaymentMethod  string                `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	Status         string                `json:"status" bson:"status"` // e.g. "pending", "completed"
	CreatedAt      time.Time             `json:"createdAt" bson:"createdAt"`
}
