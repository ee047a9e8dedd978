package repository

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pongarena/pongarena-backend/config"
)

func ConnectToRedis(cfg *config.Config) *redis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal(err)
	}

	log.Println("Successfully connected to Redis")
	return client
}
