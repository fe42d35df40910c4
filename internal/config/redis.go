package config

// Redis backs the recommendation cache, the response cache and the rate
// limiter.  If the server cannot be reached during startup NewRedisClient
// returns nil and callers degrade gracefully by disabling those features.

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9" // shared client for caches and rate limiting

	"github.com/cargarn1/MovieFan/internal/logging"
)

// RedisOptions builds client options from the environment:
//
//	REDIS_URL – redis:// or rediss:// URL; when set the other variables are ignored
//	REDIS_HOST and REDIS_PORT – hostname and port of the Redis server
//	REDIS_ADDR – host:port shorthand (host/port win when both are set)
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS when "true" or "1"
func RedisOptions() (*redis.Options, error) {
	if raw := strings.TrimSpace(os.Getenv("REDIS_URL")); raw != "" {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("REDIS_URL: %w", err)
		}
		return opts, nil
	}

	addr := os.Getenv("REDIS_ADDR")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	opts := &redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	}
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("REDIS_DB: invalid database %q", raw)
		}
		opts.DB = n
	}
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}

// NewRedisClient connects with RedisOptions and pings the server.  It
// returns nil when the options are invalid or the server is unreachable.
func NewRedisClient() *redis.Client {
	opts, err := RedisOptions()
	if err != nil {
		logging.Warn().Err(err).Msg("invalid redis configuration, cache and rate limiting disabled")
		return nil
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unavailable, cache and rate limiting disabled")
		_ = client.Close()
		return nil
	}
	logging.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("connected to redis")
	return client
}
