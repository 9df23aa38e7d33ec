package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/film-catalog/internal/config"
	"github.com/iliyamo/film-catalog/internal/utils"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func serve(e *echo.Echo, method, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRole(t *testing.T) {
	e := echo.New()
	g := e.Group("/admin", JWTAuth("secret"), RequireRole("ADMIN"))
	g.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, strconv.FormatUint(c.Get(CtxUserID).(uint64), 10))
	})

	admin, _ := utils.NewAccessToken("secret", 9, "ADMIN", 5)
	viewer, _ := utils.NewAccessToken("secret", 9, "VIEWER", 5)

	cases := []struct {
		name   string
		auth   string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer.Token, http.StatusForbidden},
		{"admin", "Bearer " + admin.Token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, "/admin/me", "Authorization", tc.auth)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.status, rec.Body)
			}
			if tc.status == http.StatusOK && rec.Body.String() != "9" {
				t.Fatalf("user id = %q", rec.Body)
			}
		})
	}
}

func TestCacheServesHitsAndInvalidatesOnWrite(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "test:cache", MaxBodyBytes: 1 << 20}

	name := "France"
	e := echo.New()
	e.Use(NewRedisCache(cfg, rdb))
	e.GET("/countries", func(c echo.Context) error { return c.JSON(http.StatusOK, echo.Map{"name": name}) })
	e.PUT("/countries/1", func(c echo.Context) error {
		name = "Germany"
		return c.JSON(http.StatusOK, echo.Map{"name": name})
	})
	e.POST("/countries", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid"})
	})

	first := serve(e, http.MethodGet, "/countries")
	if first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first X-Cache = %q", first.Header().Get("X-Cache"))
	}
	second := serve(e, http.MethodGet, "/countries")
	if second.Header().Get("X-Cache") != "HIT" || second.Body.String() != first.Body.String() {
		t.Fatalf("second = %q %q", second.Header().Get("X-Cache"), second.Body)
	}

	// A failed write leaves the cache alone.
	serve(e, http.MethodPost, "/countries")
	if got := serve(e, http.MethodGet, "/countries").Header().Get("X-Cache"); got != "HIT" {
		t.Fatalf("after failed write X-Cache = %q", got)
	}

	serve(e, http.MethodPut, "/countries/1")
	after := serve(e, http.MethodGet, "/countries")
	if after.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("after write X-Cache = %q", after.Header().Get("X-Cache"))
	}
	if after.Body.String() != "{\"name\":\"Germany\"}\n" {
		t.Fatalf("stale body %q", after.Body)
	}
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "x") })
	rec := serve(e, http.MethodGet, "/x")
	if rec.Header().Get("X-Cache") != "" || rec.Body.String() != "x" {
		t.Fatalf("unexpected cache activity: %v %q", rec.Header(), rec.Body)
	}
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1,
		RefillInterval: time.Hour, TTL: 5 * time.Hour, Prefix: "test:rl",
	}
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, rdb))

	for i := 0; i < 2; i++ {
		if rec := serve(e, http.MethodPost, "/login"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := serve(e, http.MethodPost, "/login")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestPayloadCodec(t *testing.T) {
	h := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(200, h, []byte(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	status, hdr, body, ok := decodePayload(bs)
	if !ok || status != 200 || hdr.Get("Content-Type") != "application/json" || string(body) != `{"a":1}` {
		t.Fatalf("decode = %d %v %q %v", status, hdr, body, ok)
	}
	if _, _, _, ok := decodePayload([]byte{0, 1}); ok {
		t.Fatal("short payload decoded")
	}
}
