package service

import (
	"bytes"
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargarn1/MovieFan/internal/logging"
)

// scriptedRedis answers SCAN with fixed keys and fails DEL on demand, so the
// client never opens a connection.
type scriptedRedis struct {
	mu      sync.Mutex
	keys    []string
	delErr  error
	deleted []string
}

func (h *scriptedRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled in tests")
	}
}

func (h *scriptedRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		switch c := cmd.(type) {
		case *redis.ScanCmd:
			c.SetVal(h.keys, 0)
			return nil
		case *redis.IntCmd:
			if cmd.Name() == "del" {
				if h.delErr != nil {
					return h.delErr
				}
				for _, a := range cmd.Args()[1:] {
					h.deleted = append(h.deleted, a.(string))
				}
				c.SetVal(int64(len(cmd.Args()) - 1))
				return nil
			}
		}
		return errors.New("unexpected command " + cmd.Name())
	}
}

func (h *scriptedRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func newScriptedCache(t *testing.T, h *scriptedRedis) *RedisRecommendationCache {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	rdb.AddHook(h)
	t.Cleanup(func() { _ = rdb.Close() })
	cache := NewRedisRecommendationCache(rdb, "recs", time.Minute)
	require.NotNil(t, cache)
	return cache
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })
	return &buf
}

func TestRedisCacheInvalidateDeletesScannedKeys(t *testing.T) {
	h := &scriptedRedis{keys: []string{"recs:1:5", "recs:1:10"}}
	cache := newScriptedCache(t, h)

	cache.Invalidate(context.Background(), 1)
	assert.Equal(t, []string{"recs:1:5", "recs:1:10"}, h.deleted)
}

func TestRedisCacheInvalidateLogsDeleteFailure(t *testing.T) {
	logs := captureLogs(t)
	h := &scriptedRedis{keys: []string{"recs:7:5"}, delErr: errors.New("READONLY replica")}
	cache := newScriptedCache(t, h)

	cache.Invalidate(context.Background(), 7)
	out := logs.String()
	assert.Contains(t, out, "recommendations cache delete failed")
	assert.Contains(t, out, "READONLY replica")
	assert.Contains(t, out, `"user_id":7`)
}
