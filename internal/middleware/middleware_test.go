package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cargarn1/MovieFan/internal/config"
	"github.com/cargarn1/MovieFan/internal/utils"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWTAuth(t *testing.T) {
	tok, err := utils.NewAccessToken("k", 7, "alice", 5)
	require.NoError(t, err)

	var seen uint64
	h := JWTAuth("k")(func(c echo.Context) error {
		id, ok := UserID(c)
		require.True(t, ok)
		seen = id
		return c.NoContent(http.StatusNoContent)
	})

	c, rec := newContext(http.MethodGet, "/v1/me")
	c.Request().Header.Set("Authorization", "Bearer "+tok.Token)
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, uint64(7), seen)

	c, rec = newContext(http.MethodGet, "/v1/me")
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newContext(http.MethodGet, "/v1/me")
	c.Request().Header.Set("Authorization", "Bearer "+tok.Token+"x")
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	_, ok := UserID(c)
	assert.False(t, ok)
	assert.Equal(t, "anon", rateSubject(c))

	c.Set(userIDKey, "12")
	id, ok := UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(12), id)
	assert.Equal(t, "12", rateSubject(c))

	c.Set(userIDKey, uint64(0))
	_, ok = UserID(c)
	assert.False(t, ok)
}

func TestBuildRateKey(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/v1/rooms/3/join")
	c.SetPath("/v1/rooms/:id/join")
	c.Request().RemoteAddr = "10.0.0.1:5555"
	c.Set(userIDKey, uint64(4))

	cfg := config.RateLimitConfig{Prefix: "rl"}
	assert.Equal(t, "rl:ip:10.0.0.1:user:4:route:POST /v1/rooms/:id/join", buildRateKey(cfg, c))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:4", buildRateKey(cfg, c))
	cfg.KeyStrategy = "IP"
	assert.Equal(t, "rl:ip:10.0.0.1", buildRateKey(cfg, c))
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	called := 0
	next := func(c echo.Context) error {
		called++
		return c.String(http.StatusOK, "ok")
	}
	rl := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)
	cache := NewRedisCache(config.CacheConfig{Enabled: true, TTL: time.Second}, nil)

	c, rec := newContext(http.MethodGet, "/")
	require.NoError(t, rl(cache(next))(c))
	assert.Equal(t, 1, called)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCachePayload(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"movies":[]}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `{"movies":[]}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
	_, _, _, ok = decodePayload(append([]byte{0, 0, 0, 200, 0, 0, 1, 0}, '{'))
	assert.False(t, ok)
}

func TestCacheKeyFrom(t *testing.T) {
	a, _ := newContext(http.MethodGet, "/v1/movies/10/similar?limit=3")
	a.SetPath("/v1/movies/:id/similar")
	b, _ := newContext(http.MethodGet, "/v1/movies/11/similar?limit=3")
	b.SetPath("/v1/movies/:id/similar")

	cfg := config.CacheConfig{Prefix: "c"}
	assert.NotEqual(t, cacheKeyFrom(cfg, a), cacheKeyFrom(cfg, b))
	assert.Contains(t, cacheKeyFrom(cfg, a), "c:")

	cfg.KeyStrategy = "route"
	assert.Equal(t, cacheKeyFrom(cfg, a), cacheKeyFrom(cfg, b))
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, err := cw.Write([]byte("abc"))
	require.NoError(t, err)
	assert.False(t, cw.over)
	_, err = cw.Write([]byte("de"))
	require.NoError(t, err)
	assert.True(t, cw.over)
	assert.Equal(t, "abcde", rec.Body.String())
}
