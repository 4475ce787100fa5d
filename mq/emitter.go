package mq

import (
	"context"
	"encoding/json"
	"log"

	"kourso/rdx"
)

// Event describes a cart-subsystem happening other services may react
// to (search indexing, analytics, email).
type Event struct {
	EntityType string `json:"entity_type"`
	Method     string `json:"method"`
	EntityId   string `json:"entity_id"`
	UserId     string `json:"user_id,omitempty"`
}

const channel = "cart-events"

// Emit publishes the event to Redis; failures are logged, never fatal.
func Emit(ctx context.Context, eventName string, content Event) {
	data, err := json.Marshal(content)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event content: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s: %v", eventName, err)
	}
}

// StartEventWorker drains the channel and logs what flows through. It
// is the hook point for downstream consumers.
func StartEventWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	log.Println("[EventWorker] Listening for cart events...")

	for msg := range ch {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[EventWorker] Failed to parse event: %v", err)
			continue
		}
		log.Printf("[EventWorker] %s %s %s", event.Method, event.EntityType, event.EntityId)
	}
}
