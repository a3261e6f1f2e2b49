package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

type StoreBackend string

const (
	PostgresBackend StoreBackend = "postgres"
	RedisBackend    StoreBackend = "redis"
	MemoryBackend   StoreBackend = "memory"
)

func NewStoreBackend() (StoreBackend, error) {
	backend, ok := os.LookupEnv("STORE_BACKEND")
	if !ok || backend == "" {
		return PostgresBackend, nil
	}
	switch b := StoreBackend(strings.ToLower(backend)); b {
	case PostgresBackend, RedisBackend, MemoryBackend:
		return b, nil
	}
	return "", fmt.Errorf("unknown STORE_BACKEND %q", backend)
}

func NewRedisOptions() (*redis.Options, error) {
	redisURL, ok := os.LookupEnv("REDIS_URL")
	if !ok {
		return nil, fmt.Errorf("no REDIS_URL env variable set")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse REDIS_URL: %w", err)
	}
	return opts, nil
}
