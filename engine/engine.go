// Package engine owns the cart: line items, the applied coupon and the
// shipping selection. Every figure shown to the user (subtotal,
// discount, taxes, shipping, total) is derived from that state on each
// read. State is persisted to the remote cart API for authenticated
// users and to a local string store for guests; mutations update memory
// first and treat persistence as fire-and-forget.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// DefaultLocalKey is the fixed key the guest cart record lives under.
// One cart per device profile; there is no per-tab isolation.
const DefaultLocalKey = "kourso_cart"

// Config wires the engine to its collaborators. Auth, Remote and Local
// are required; Notifier is optional.
type Config struct {
	Auth     AuthSource
	Remote   RemoteStore
	Local    LocalStore
	Notifier Notifier
	LocalKey string
}

// Engine holds the cart state and routes persistence by auth state.
type Engine struct {
	mu       sync.Mutex
	auth     AuthSource
	remote   RemoteStore
	local    LocalStore
	notifier Notifier
	localKey string

	items    []LineItem
	coupon   *Coupon
	shipping ShippingMethod
}

func New(cfg Config) *Engine {
	key := cfg.LocalKey
	if key == "" {
		key = DefaultLocalKey
	}
	return &Engine{
		auth:     cfg.Auth,
		remote:   cfg.Remote,
		local:    cfg.Local,
		notifier: cfg.Notifier,
		localKey: key,
		items:    []LineItem{},
		shipping: ShippingStandard,
	}
}

func (e *Engine) notify(msg string) {
	if e.notifier != nil {
		e.notifier.Notify(msg)
	}
}

// Reload re-reads the cart from whichever store matches the current
// auth state. Call it at construction and whenever login state changes.
// A remote failure keeps the last known in-memory state and notifies
// the user; a missing or corrupt guest record becomes an empty cart.
func (e *Engine) Reload(ctx context.Context) error {
	if _, ok := e.auth.CurrentUserID(); ok {
		items, coupon, err := e.remote.Load(ctx)
		if err != nil {
			log.Println("cart reload error:", err)
			e.notify("Could not load your cart")
			return err
		}
		if items == nil {
			items = []LineItem{}
		}
		e.mu.Lock()
		e.items = items
		e.coupon = coupon
		e.mu.Unlock()
		return nil
	}

	raw, err := e.local.Get(ctx, e.localKey)
	items, coupon := []LineItem{}, (*Coupon)(nil)
	if err == nil && raw != "" {
		if li, c, derr := decodeLocalRecord(raw); derr == nil {
			items, coupon = li, c
		} else {
			log.Println("guest cart record corrupt, starting empty:", derr)
		}
	} else if err != nil && err != ErrNotFound {
		log.Println("guest cart read error, starting empty:", err)
	}
	e.mu.Lock()
	e.items = items
	e.coupon = coupon
	e.mu.Unlock()
	return nil
}

// persist writes the given snapshot to the store matching the current
// auth state. Failures are logged only; memory stays the source of
// truth for the session.
func (e *Engine) persist(ctx context.Context, items []LineItem, coupon *Coupon) {
	if _, ok := e.auth.CurrentUserID(); ok {
		if err := e.remote.Save(ctx, items, coupon); err != nil {
			log.Println("cart save error:", err)
		}
		return
	}
	raw, err := encodeLocalRecord(items, coupon)
	if err != nil {
		log.Println("guest cart encode error:", err)
		return
	}
	if err := e.local.Set(ctx, e.localKey, raw); err != nil {
		log.Println("guest cart save error:", err)
	}
}

// snapshot copies the current items and coupon under the lock so the
// persistence write cannot race a later mutation.
func (e *Engine) snapshot() ([]LineItem, *Coupon) {
	items := make([]LineItem, len(e.items))
	copy(items, e.items)
	return items, e.coupon
}

// AddToCart merges the item into the cart: an existing id gains one
// more unit, a new id is appended with quantity 1.
func (e *Engine) AddToCart(ctx context.Context, raw RawItem) error {
	if raw.ID == "" {
		return fmt.Errorf("add to cart: missing item id")
	}
	item := raw.Normalize()

	e.mu.Lock()
	found := false
	for i := range e.items {
		if e.items[i].ID == item.ID {
			e.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		item.Quantity = 1
		e.items = append(e.items, item)
	}
	items, coupon := e.snapshot()
	e.mu.Unlock()

	e.persist(ctx, items, coupon)
	e.notify(fmt.Sprintf("%s added to cart", item.Title))
	return nil
}

// UpdateQuantity sets the item's quantity to exactly n. Anything at or
// below zero removes the item instead; quantities are never stored as 0.
func (e *Engine) UpdateQuantity(ctx context.Context, id string, n int) error {
	if n <= 0 {
		return e.RemoveFromCart(ctx, id)
	}

	e.mu.Lock()
	for i := range e.items {
		if e.items[i].ID == id {
			e.items[i].Quantity = n
			break
		}
	}
	items, coupon := e.snapshot()
	e.mu.Unlock()

	e.persist(ctx, items, coupon)
	return nil
}

// RemoveFromCart filters the item out of the cart.
func (e *Engine) RemoveFromCart(ctx context.Context, id string) error {
	e.mu.Lock()
	kept := e.items[:0]
	for _, it := range e.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	e.items = kept
	items, coupon := e.snapshot()
	e.mu.Unlock()

	e.persist(ctx, items, coupon)
	return nil
}

// ClearCart empties the items and drops the coupon in one update.
// Calling it on an already empty cart is a no-op that persists again.
func (e *Engine) ClearCart(ctx context.Context) error {
	e.mu.Lock()
	e.items = []LineItem{}
	e.coupon = nil
	items, coupon := e.snapshot()
	e.mu.Unlock()

	e.persist(ctx, items, coupon)
	return nil
}

// ApplyCoupon validates the code against the remote service with the
// current subtotal. On success the returned coupon replaces any active
// one and the cart is persisted; on rejection the existing coupon is
// left untouched and the server's reason is returned.
func (e *Engine) ApplyCoupon(ctx context.Context, code string) (*Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("no coupon code provided")
	}

	subtotal := e.Summarize().Subtotal
	coupon, err := e.remote.ApplyCoupon(ctx, code, subtotal)
	if err != nil {
		log.Println("apply coupon error:", err)
		return nil, err
	}

	e.mu.Lock()
	e.coupon = coupon
	items, c := e.snapshot()
	e.mu.Unlock()

	e.persist(ctx, items, c)
	return coupon, nil
}

// RemoveCoupon clears the active coupon and persists.
func (e *Engine) RemoveCoupon(ctx context.Context) error {
	e.mu.Lock()
	e.coupon = nil
	items, coupon := e.snapshot()
	e.mu.Unlock()

	e.persist(ctx, items, coupon)
	return nil
}

// SetShippingMethod records the delivery selection. The choice is
// in-memory only; it flows into the next summary rather than forcing a
// persistence round trip.
func (e *Engine) SetShippingMethod(m ShippingMethod) error {
	if !ValidShippingMethod(m) {
		return fmt.Errorf("unknown shipping method %q", m)
	}
	e.mu.Lock()
	e.shipping = m
	e.mu.Unlock()
	return nil
}

// Coupon returns the active coupon, or nil.
func (e *Engine) Coupon() *Coupon {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coupon
}

// Items returns a copy of the current line items.
func (e *Engine) Items() []LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	items, _ := e.snapshot()
	return items
}

// ShippingMethod returns the current delivery selection.
func (e *Engine) ShippingMethod() ShippingMethod {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shipping
}

// Summarize computes the full price breakdown from the current state.
func (e *Engine) Summarize() Summary {
	e.mu.Lock()
	items, coupon := e.snapshot()
	method := e.shipping
	e.mu.Unlock()
	return Calculate(items, coupon, method)
}

// The individual accessors delegate to Summarize so they can never
// disagree with the aggregated snapshot.

func (e *Engine) Subtotal() float64              { return e.Summarize().Subtotal }
func (e *Engine) Discount() float64              { return e.Summarize().Discount }
func (e *Engine) SubtotalAfterDiscount() float64 { return e.Summarize().SubtotalAfterDiscount }
func (e *Engine) Taxes() float64                 { return e.Summarize().Taxes }
func (e *Engine) ShippingCost() float64          { return e.Summarize().ShippingCost }
func (e *Engine) Total() float64                 { return e.Summarize().Total }
func (e *Engine) ItemCount() int                 { return e.Summarize().ItemCount }

// IsInCart reports whether an item with the id is present.
func (e *Engine) IsInCart(id string) bool {
	return e.ItemQuantity(id) > 0
}

// ItemQuantity returns the item's quantity, or 0 when absent.
func (e *Engine) ItemQuantity(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, it := range e.items {
		if it.ID == id {
			return it.Quantity
		}
	}
	return 0
}

// Validate runs the pre-checkout checks on the current cart.
func (e *Engine) Validate() Validation {
	e.mu.Lock()
	items, _ := e.snapshot()
	e.mu.Unlock()
	return ValidateItems(items)
}
