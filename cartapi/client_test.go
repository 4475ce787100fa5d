package cartapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kourso/engine"
)

func TestLoadDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cart" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("authorization header = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"items":  []engine.LineItem{{ID: "a", Title: "Widget", UnitPrice: 1000, Quantity: 2}},
				"coupon": nil,
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, func() string { return "tok123" })
	items, coupon, err := c.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "a" || items[0].Quantity != 2 {
		t.Fatalf("items = %+v", items)
	}
	if coupon != nil {
		t.Fatalf("coupon = %+v, want nil", coupon)
	}
}

func TestSavePostsCartBody(t *testing.T) {
	var got struct {
		Items  []engine.LineItem `json:"items"`
		Coupon *engine.Coupon    `json:"coupon"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cart" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{"status": "saved"}})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	items := []engine.LineItem{{ID: "a", UnitPrice: 500, Quantity: 1}}
	coupon := &engine.Coupon{Code: "SAVE10", Type: engine.CouponPercentage, Value: 10}
	if err := c.Save(context.Background(), items, coupon); err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0].ID != "a" {
		t.Fatalf("server saw items %+v", got.Items)
	}
	if got.Coupon == nil || got.Coupon.Code != "SAVE10" {
		t.Fatalf("server saw coupon %+v", got.Coupon)
	}
}

func TestApplyCouponSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["code"] != "SAVE10" {
			t.Errorf("code = %v", req["code"])
		}
		if req["cartTotal"].(float64) != 60000 {
			t.Errorf("cartTotal = %v", req["cartTotal"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"coupon": engine.Coupon{Code: "SAVE10", Type: engine.CouponPercentage, Value: 10},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	coupon, err := c.ApplyCoupon(context.Background(), "SAVE10", 60000)
	if err != nil {
		t.Fatal(err)
	}
	if coupon.Type != engine.CouponPercentage || coupon.Value != 10 {
		t.Fatalf("coupon = %+v", coupon)
	}
}

func TestApplyCouponRejectionCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Coupon expired"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.ApplyCoupon(context.Background(), "DEAD", 100)
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if err.Error() != "Coupon expired" {
		t.Fatalf("error = %q, want the server's message verbatim", err.Error())
	}
}

// The client satisfies the engine port.
var _ engine.RemoteStore = (*Client)(nil)
