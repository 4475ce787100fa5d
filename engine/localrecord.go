package engine

import (
	"encoding/json"
	"time"
)

// localRecord is the serialized guest cart. Writing and re-reading it
// must reproduce an equivalent items/coupon pair; anything malformed
// degrades to an empty cart.
type localRecord struct {
	Items     []LineItem `json:"items"`
	Coupon    *Coupon    `json:"coupon"`
	UpdatedAt string     `json:"updatedAt"`
}

func encodeLocalRecord(items []LineItem, coupon *Coupon) (string, error) {
	rec := localRecord{
		Items:     items,
		Coupon:    coupon,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if rec.Items == nil {
		rec.Items = []LineItem{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeLocalRecord(raw string) ([]LineItem, *Coupon, error) {
	var rec localRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, nil, err
	}
	if rec.Items == nil {
		rec.Items = []LineItem{}
	}
	return rec.Items, rec.Coupon, nil
}
