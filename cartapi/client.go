// Package cartapi is the HTTP implementation of the engine's
// RemoteStore port against the platform's cart endpoints.
package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kourso/engine"
)

// Client talks to the remote cart API. Token supplies the current
// bearer token on each call; return "" for unauthenticated requests.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      func() string
}

func New(baseURL string, token func() string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Token:      token,
	}
}

// envelope is the server's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != nil {
		if t := c.Token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("cart api: bad response (%d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return &env, nil
}

// Load fetches the user's cart.
func (c *Client) Load(ctx context.Context) ([]engine.LineItem, *engine.Coupon, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/cart", nil)
	if err != nil {
		return nil, nil, err
	}

	var data struct {
		Items  []engine.LineItem `json:"items"`
		Coupon *engine.Coupon    `json:"coupon"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, nil, fmt.Errorf("cart api: decode cart: %w", err)
	}
	if data.Items == nil {
		data.Items = []engine.LineItem{}
	}
	return data.Items, data.Coupon, nil
}

// Save replaces the remote cart with the given state.
func (c *Client) Save(ctx context.Context, items []engine.LineItem, coupon *engine.Coupon) error {
	if items == nil {
		items = []engine.LineItem{}
	}
	_, err := c.do(ctx, http.MethodPost, "/api/cart", map[string]any{
		"items":  items,
		"coupon": coupon,
	})
	return err
}

// ApplyCoupon submits the code with the current subtotal and returns
// the validated coupon. Rejections come back as plain errors carrying
// the server's message.
func (c *Client) ApplyCoupon(ctx context.Context, code string, cartTotal float64) (*engine.Coupon, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/cart/apply-coupon", map[string]any{
		"code":      code,
		"cartTotal": cartTotal,
	})
	if err != nil {
		return nil, err
	}

	var data struct {
		Coupon *engine.Coupon `json:"coupon"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("cart api: decode coupon: %w", err)
	}
	if data.Coupon == nil {
		return nil, fmt.Errorf("cart api: empty coupon in response")
	}
	return data.Coupon, nil
}
