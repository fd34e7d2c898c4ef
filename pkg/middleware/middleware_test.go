package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/cache"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/logger"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/request"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDReachesRequestContext(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = request.IDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := serve(r, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, rec.Header().Get(RequestIDHeader), seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "id with spaces\tand tabs")
	rec = serve(r, req)
	assert.NotEqual(t, "id with spaces\tand tabs", seen)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestSessionLoaderResolvesHeaderCookieAndBearer(t *testing.T) {
	store := session.NewStore(cache.NewMemoryCache(), time.Hour)
	sess, err := store.Create(context.Background(), "stored-token")
	require.NoError(t, err)

	r := gin.New()
	r.Use(SessionLoader(store, "rfs_session", logger.Discard()))
	r.GET("/", RequireSession(), func(c *gin.Context) {
		s, _ := GetSession(c)
		fromCtx, ok := session.FromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, s.ID, fromCtx.ID)
		c.String(http.StatusOK, s.Token)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, sess.ID)
	rec := serve(r, req)
	assert.Equal(t, "stored-token", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "rfs_session", Value: sess.ID})
	rec = serve(r, req)
	assert.Equal(t, "stored-token", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer direct-token")
	rec = serve(r, req)
	assert.Equal(t, "direct-token", rec.Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "unknown")
	rec = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerSessionIDIsStablePerToken(t *testing.T) {
	store := session.NewStore(cache.NewMemoryCache(), time.Hour)
	r := gin.New()
	r.Use(SessionLoader(store, "", logger.Discard()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, SessionID(c)) })

	ids := make([]string, 0, 3)
	for _, token := range []string{"a", "a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		ids = append(ids, serve(r, req).Body.String())
	}

	assert.Equal(t, ids[0], ids[1])
	assert.NotEqual(t, ids[0], ids[2])
}

func TestRateLimiterPerSession(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Close()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader(SessionHeader); id != "" {
			c.Set(sessionKey, session.FromToken(id, "t"))
		}
		c.Next()
	})
	r.Use(rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(id string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(SessionHeader, id)
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, call("s1"))
	assert.Equal(t, http.StatusOK, call("s1"))
	assert.Equal(t, http.StatusTooManyRequests, call("s1"))
	assert.Equal(t, http.StatusOK, call("s2"))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusOK, call("s1"))
}

func TestRecoveryAnswersWithEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(logger.Discard()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://console.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://console.example.com")
	rec := serve(r, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://console.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), SessionHeader)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(r, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
