package rdx

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"kourso/engine"
)

var Conn *redis.Client

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}

	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"), // Empty if no password
		DB:       0,                           // Default DB
	})
}

func RdxSet(key, value string) error {
	return Conn.Set(context.Background(), key, value, 0).Err()
}

func RdxGet(key string) (string, error) {
	return Conn.Get(context.Background(), key).Result()
}

func SetWithExpiry(key, value string, ttl time.Duration) error {
	return Conn.Set(context.Background(), key, value, ttl).Err()
}

func RdxHset(hash, field, value string) error {
	return Conn.HSet(context.Background(), hash, field, value).Err()
}

func RdxHdel(hash, field string) (int64, error) {
	return Conn.HDel(context.Background(), hash, field).Result()
}

// CartKV adapts the shared Redis connection to the engine's LocalStore
// port, so guest carts survive process restarts. Keys arrive already
// scoped by the engine (one record per device profile).
type CartKV struct {
	Prefix string
}

var _ engine.LocalStore = (*CartKV)(nil)

func NewCartKV() *CartKV {
	return &CartKV{Prefix: "guestcart:"}
}

func (kv *CartKV) Get(ctx context.Context, key string) (string, error) {
	v, err := Conn.Get(ctx, kv.Prefix+key).Result()
	if err == redis.Nil {
		return "", engine.ErrNotFound
	}
	return v, err
}

func (kv *CartKV) Set(ctx context.Context, key, value string) error {
	return Conn.Set(ctx, kv.Prefix+key, value, 0).Err()
}
