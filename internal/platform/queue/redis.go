package queue

import (
	"context"
	"fmt"
	"lexora/internal/platform/config"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RDB stays nil when REDIS_ADDR is empty.
var RDB *redis.Client

func ConnectRedis() {
	if !config.AppConfig.RedisEnabled() {
		log.Println("INFO: REDIS_ADDR not set, token denylist and activity queue run in-process")
		return
	}
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := RDB.Ping(ctx).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}
