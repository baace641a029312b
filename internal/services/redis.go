package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// webhookDedupTTL is how long a gateway transaction id is remembered. The
// ALREADY_SETTLED short-circuit in the reconciler remains the authoritative
// idempotency guard when this cache is cold.
const webhookDedupTTL = 24 * time.Hour

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// WebhookDeduper remembers gateway transaction ids so repeated deliveries of
// the same event can be acknowledged without re-reconciling.
type WebhookDeduper struct {
	client *redis.Client
}

func NewWebhookDeduper(client *redis.Client) *WebhookDeduper {
	return &WebhookDeduper{client: client}
}

// FirstDelivery reports whether this gateway transaction id has not been
// seen before. Errors are returned so the caller can fail open.
func (d *WebhookDeduper) FirstDelivery(ctx context.Context, gatewayID string) (bool, error) {
	key := fmt.Sprintf("webhook:delivery:%s", gatewayID)
	return d.client.SetNX(ctx, key, time.Now().Unix(), webhookDedupTTL).Result()
}

// CachePaymentRequest stores a generated payment request for a booking so
// repeated checkout calls within the payment window reuse the same QR.
func CachePaymentRequest(ctx context.Context, bookingCode string, request interface{}, ttl time.Duration) error {
	data, err := json.Marshal(request)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("payment:request:%s", bookingCode)
	return RedisClient.Set(ctx, key, data, ttl).Err()
}

// GetCachedPaymentRequest retrieves a cached payment request for a booking.
// The second return value is false on a cache miss.
func GetCachedPaymentRequest(ctx context.Context, bookingCode string, out interface{}) (bool, error) {
	key := fmt.Sprintf("payment:request:%s", bookingCode)
	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, err
	}
	return true, nil
}

// DropCachedPaymentRequest removes the cached payment request once a booking
// settles or is cancelled.
func DropCachedPaymentRequest(ctx context.Context, bookingCode string) error {
	key := fmt.Sprintf("payment:request:%s", bookingCode)
	return RedisClient.Del(ctx, key).Err()
}
