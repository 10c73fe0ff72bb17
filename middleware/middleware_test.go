package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"friendzone/logger"
	"friendzone/response"
	"friendzone/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	good, err := tokens.Generate("user-1")
	require.NoError(t, err)
	forged, err := token.NewManager("other", time.Hour).Generate("user-1")
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", JWTAuth(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey))
	})

	tests := []struct {
		name   string
		target string
		header string
		status int
	}{
		{"bearer header", "/me", "Bearer " + good, http.StatusOK},
		{"query fallback", "/me?token=" + good, "", http.StatusOK},
		{"missing", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic " + good, http.StatusUnauthorized},
		{"empty bearer", "/me", "Bearer ", http.StatusUnauthorized},
		{"forged", "/me", "Bearer " + forged, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, tt.target, map[string]string{"Authorization": tt.header})
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1", w.Body.String())
				return
			}
			var body response.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "AuthError", body.Error)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(response.RequestIDKey)) })

	w := perform(r, http.MethodGet, "/", map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = perform(r, http.MethodGet, "/", nil)
	assert.Len(t, w.Body.String(), 36)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		<-c.Request.Context().Done()
		assert.ErrorIs(t, c.Request.Context().Err(), context.DeadlineExceeded)
		c.Status(http.StatusGatewayTimeout)
	})

	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestMemoryLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	res, _ := l.Allow(ctx, "k")
	assert.True(t, res.Allowed)
	assert.Equal(t, 1, res.Remaining)
	res, _ = l.Allow(ctx, "k")
	assert.True(t, res.Allowed)
	res, _ = l.Allow(ctx, "k")
	assert.False(t, res.Allowed)
	assert.Equal(t, time.Minute, res.Reset)

	res, _ = l.Allow(ctx, "other")
	assert.True(t, res.Allowed, "keys are independent")

	now = now.Add(61 * time.Second)
	res, _ = l.Allow(ctx, "k")
	assert.True(t, res.Allowed)
}

func TestMemoryLimiterDropsIdleKeys(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_, err := l.Allow(ctx, key)
		require.NoError(t, err)
	}
	now = now.Add(30 * time.Second)
	_, _ = l.Allow(ctx, "d")
	assert.Len(t, l.requests, 4)

	now = now.Add(31 * time.Second)
	_, _ = l.Allow(ctx, "e")
	assert.Len(t, l.requests, 2)
	assert.Contains(t, l.requests, "d")
	assert.Contains(t, l.requests, "e")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(NewMemoryLimiter(1, time.Minute), KeyByIP("test"), logger.Discard()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TooManyRequests")
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	r := gin.New()
	r.Use(RateLimit(NewRedisLimiter(rdb, "rl:", 1, time.Minute), KeyByIP("api"), logger.Discard()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		w := perform(r, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestMetricsCountsByRoute(t *testing.T) {
	m := NewMetrics("test")
	r := gin.New()
	r.Use(m.Handler())
	r.GET("/posts/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	perform(r, http.MethodGet, "/posts/1", nil)
	perform(r, http.MethodGet, "/posts/2", nil)
	perform(r, http.MethodGet, "/nowhere", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/posts/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestAccessLogDoesNotAlterResponse(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AccessLog(logger.Discard()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusTeapot, "short and stout") })

	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "short"))
}
