package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeAuth struct {
	userID string
}

func (a *fakeAuth) CurrentUserID() (string, bool) {
	return a.userID, a.userID != ""
}

type fakeRemote struct {
	items   []LineItem
	coupon  *Coupon
	loadErr error

	saves       int
	applyCoupon *Coupon
	applyErr    error
}

func (r *fakeRemote) Load(ctx context.Context) ([]LineItem, *Coupon, error) {
	if r.loadErr != nil {
		return nil, nil, r.loadErr
	}
	return r.items, r.coupon, nil
}

func (r *fakeRemote) Save(ctx context.Context, items []LineItem, coupon *Coupon) error {
	r.items = items
	r.coupon = coupon
	r.saves++
	return nil
}

func (r *fakeRemote) ApplyCoupon(ctx context.Context, code string, cartTotal float64) (*Coupon, error) {
	if r.applyErr != nil {
		return nil, r.applyErr
	}
	return r.applyCoupon, nil
}

type fakeNotifier struct {
	messages []string
}

func (n *fakeNotifier) Notify(msg string) {
	n.messages = append(n.messages, msg)
}

func guestEngine() *Engine {
	return New(Config{
		Auth:   &fakeAuth{},
		Remote: &fakeRemote{},
		Local:  NewMemStore(),
	})
}

func TestAddToCartMergesOnExistingID(t *testing.T) {
	ctx := context.Background()
	e := guestEngine()

	price := 1000.0
	item := RawItem{ID: "a", Title: "Widget", Price: &price}
	if err := e.AddToCart(ctx, item); err != nil {
		t.Fatal(err)
	}
	if err := e.AddToCart(ctx, item); err != nil {
		t.Fatal(err)
	}

	items := e.Items()
	if len(items) != 1 {
		t.Fatalf("got %d entries, want 1 merged entry", len(items))
	}
	if items[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", items[0].Quantity)
	}
}

func TestAddToCartRequiresID(t *testing.T) {
	e := guestEngine()
	if err := e.AddToCart(context.Background(), RawItem{Title: "nameless"}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestUpdateQuantityZeroOrNegativeRemoves(t *testing.T) {
	ctx := context.Background()

	for _, n := range []int{0, -1} {
		e := guestEngine()
		price := 500.0
		if err := e.AddToCart(ctx, RawItem{ID: "a", Price: &price}); err != nil {
			t.Fatal(err)
		}
		if err := e.UpdateQuantity(ctx, "a", n); err != nil {
			t.Fatal(err)
		}
		if e.IsInCart("a") {
			t.Fatalf("UpdateQuantity(%d) left the item in the cart", n)
		}
	}
}

func TestUpdateQuantitySetsExactValue(t *testing.T) {
	ctx := context.Background()
	e := guestEngine()
	price := 500.0
	if err := e.AddToCart(ctx, RawItem{ID: "a", Price: &price}); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateQuantity(ctx, "a", 7); err != nil {
		t.Fatal(err)
	}
	if got := e.ItemQuantity("a"); got != 7 {
		t.Fatalf("quantity = %d, want exactly 7", got)
	}
}

func TestGuestRoundTrip(t *testing.T) {
	ctx := context.Background()
	local := NewMemStore()
	auth := &fakeAuth{}

	e := New(Config{Auth: auth, Remote: &fakeRemote{}, Local: local})
	price := 1000.0
	if err := e.AddToCart(ctx, RawItem{ID: "a", Price: &price}); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateQuantity(ctx, "a", 2); err != nil {
		t.Fatal(err)
	}

	// A fresh engine over the same local store sees the same cart.
	e2 := New(Config{Auth: auth, Remote: &fakeRemote{}, Local: local})
	if err := e2.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	items := e2.Items()
	if len(items) != 1 || items[0].ID != "a" || items[0].UnitPrice != 1000 || items[0].Quantity != 2 {
		t.Fatalf("reloaded items = %+v, want the saved cart back", items)
	}
	if e2.Coupon() != nil {
		t.Fatalf("reloaded coupon = %+v, want nil", e2.Coupon())
	}
}

func TestCorruptLocalRecordDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	local := NewMemStore()
	if err := local.Set(ctx, DefaultLocalKey, "{not json"); err != nil {
		t.Fatal(err)
	}

	e := New(Config{Auth: &fakeAuth{}, Remote: &fakeRemote{}, Local: local})
	if err := e.Reload(ctx); err != nil {
		t.Fatalf("corrupt record should not error, got %v", err)
	}
	if got := len(e.Items()); got != 0 {
		t.Fatalf("items = %d, want empty cart", got)
	}
}

func TestClearCartIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := guestEngine()
	price := 1000.0
	if err := e.AddToCart(ctx, RawItem{ID: "a", Price: &price}); err != nil {
		t.Fatal(err)
	}
	e.mu.Lock()
	e.coupon = &Coupon{Code: "X", Type: CouponFixed, Value: 10}
	e.mu.Unlock()

	for i := 0; i < 2; i++ {
		if err := e.ClearCart(ctx); err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
		if len(e.Items()) != 0 || e.Coupon() != nil {
			t.Fatalf("clear #%d left state behind", i+1)
		}
	}
}

func TestApplyCouponSuccessReplacesActive(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{applyCoupon: &Coupon{Code: "SAVE10", Type: CouponPercentage, Value: 10}}
	e := New(Config{Auth: &fakeAuth{userID: "u1"}, Remote: remote, Local: NewMemStore()})

	c, err := e.ApplyCoupon(ctx, "  save10 ")
	if err != nil {
		t.Fatal(err)
	}
	if c.Code != "SAVE10" {
		t.Fatalf("coupon code = %q", c.Code)
	}
	if e.Coupon() == nil || e.Coupon().Code != "SAVE10" {
		t.Fatalf("active coupon = %+v, want SAVE10", e.Coupon())
	}
	if remote.saves == 0 {
		t.Fatal("applying a coupon should persist the cart")
	}
}

func TestApplyCouponRejectionKeepsExisting(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{applyErr: errors.New("coupon expired")}
	e := New(Config{Auth: &fakeAuth{userID: "u1"}, Remote: remote, Local: NewMemStore()})
	e.mu.Lock()
	e.coupon = &Coupon{Code: "OLD", Type: CouponFixed, Value: 500}
	e.mu.Unlock()

	if _, err := e.ApplyCoupon(ctx, "dead"); err == nil {
		t.Fatal("expected rejection error")
	}
	if e.Coupon() == nil || e.Coupon().Code != "OLD" {
		t.Fatalf("rejection must not touch the existing coupon, got %+v", e.Coupon())
	}
}

func TestRemoteLoadFailureKeepsStateAndNotifies(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	notifier := &fakeNotifier{}
	e := New(Config{Auth: &fakeAuth{userID: "u1"}, Remote: remote, Local: NewMemStore(), Notifier: notifier})

	price := 1000.0
	if err := e.AddToCart(ctx, RawItem{ID: "a", Price: &price}); err != nil {
		t.Fatal(err)
	}

	remote.loadErr = errors.New("network down")
	if err := e.Reload(ctx); err == nil {
		t.Fatal("expected reload error")
	}
	if !e.IsInCart("a") {
		t.Fatal("failed reload must keep last known state")
	}
	if len(notifier.messages) == 0 {
		t.Fatal("remote load failure should notify the user")
	}
}

func TestAuthSwitchRoutesPersistence(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{}
	remote := &fakeRemote{}
	local := NewMemStore()
	e := New(Config{Auth: auth, Remote: remote, Local: local})

	price := 1000.0
	if err := e.AddToCart(ctx, RawItem{ID: "a", Price: &price}); err != nil {
		t.Fatal(err)
	}
	if remote.saves != 0 {
		t.Fatal("guest mutation must not hit the remote store")
	}

	auth.userID = "u1"
	if err := e.AddToCart(ctx, RawItem{ID: "b", Price: &price}); err != nil {
		t.Fatal(err)
	}
	if remote.saves != 1 {
		t.Fatalf("remote saves = %d, want 1 after login", remote.saves)
	}
}

func TestSetShippingMethod(t *testing.T) {
	e := guestEngine()
	if err := e.SetShippingMethod(ShippingExpress); err != nil {
		t.Fatal(err)
	}
	if e.ShippingMethod() != ShippingExpress {
		t.Fatalf("method = %s, want express", e.ShippingMethod())
	}
	if err := e.SetShippingMethod("overnight"); err == nil {
		t.Fatal("unknown method must be rejected")
	}
}

func TestAccessorsMatchSummary(t *testing.T) {
	ctx := context.Background()
	e := guestEngine()
	price := 30000.0
	if err := e.AddToCart(ctx, RawItem{ID: "course1", Price: &price}); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateQuantity(ctx, "course1", 2); err != nil {
		t.Fatal(err)
	}

	s := e.Summarize()
	if e.Subtotal() != s.Subtotal || e.Discount() != s.Discount ||
		e.Taxes() != s.Taxes || e.ShippingCost() != s.ShippingCost ||
		e.Total() != s.Total || e.ItemCount() != s.ItemCount {
		t.Fatal("individual accessors drifted from Summarize")
	}
}

func TestValidateStockCeiling(t *testing.T) {
	ctx := context.Background()
	e := guestEngine()

	v := e.Validate()
	if v.Valid {
		t.Fatal("empty cart must fail validation")
	}

	stock := 1
	price := 100.0
	if err := e.AddToCart(ctx, RawItem{ID: "a", Title: "Scarce", Price: &price, Stock: &stock}); err != nil {
		t.Fatal(err)
	}
	if err := e.UpdateQuantity(ctx, "a", 3); err != nil {
		t.Fatal(err)
	}

	v = e.Validate()
	if v.Valid {
		t.Fatal("over-stock cart must fail validation")
	}
	found := false
	for _, reason := range v.Reasons {
		if strings.HasPrefix(reason, "Scarce") {
			found = true
		}
	}
	if !found {
		t.Fatalf("reasons %v should name the item", v.Reasons)
	}
}
