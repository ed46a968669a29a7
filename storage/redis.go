package storage

import (
	"github.com/go-redis/redis/v8"
)

// NewRedis builds the client used as the payment-callback replay guard.
// Redis is never a read cache here; booked dates always come from the
// database.
func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})
}
