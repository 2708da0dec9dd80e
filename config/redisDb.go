package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

func GetRedisDB() *redis.Client {
	return rdb
}

func GetRedisLock() *redislock.Client {
	return locker
}

// ConnectRedisWithRetry connects the shared client and lock factory.
// Redis is only used for cross-instance posting locks; the engines
// themselves never touch it.
func ConnectRedisWithRetry() {
	address := os.Getenv("REDIS_ADDRESS")
	password := os.Getenv("REDIS_PASSWORD")

	var attempt int
	for {
		attempt++
		client := redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err == nil {
			rdb = client
			locker = redislock.New(client)
			log.Printf("connected to redis (attempt=%d)", attempt)
			return
		}
		_ = client.Close()

		sleep := time.Second * time.Duration(min(attempt, 10))
		log.Printf("failed to connect redis (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		time.Sleep(sleep)
	}
}

// ObtainPostingLock serializes hash-chain appends per company across
// instances. Callers must Release the returned lock.
func ObtainPostingLock(ctx context.Context, companyId string, ttl time.Duration) (*redislock.Lock, error) {
	if locker == nil {
		return nil, fmt.Errorf("redis lock not initialized")
	}
	return locker.Obtain(ctx, fmt.Sprintf("posting:%s", companyId), ttl, nil)
}
