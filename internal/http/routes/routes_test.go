package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/features/workspace"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/gateway"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/gateway/gatewaytest"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/http/routes"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/cache"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/config"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/health"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/logger"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/middleware"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/request"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

type console struct {
	engine   *gin.Engine
	backend  *gatewaytest.Backend
	registry *workspace.Registry
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      json.RawMessage `json:"error"`
	Pagination json.RawMessage `json:"pagination"`
}

func newConsole(t *testing.T) *console {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := gatewaytest.New(t)
	backend.SeedProduct(content.Product{ID: "prod-1", Name: "Go Academy", Category: "Programming", AccessType: content.AccessBoth})
	backend.SeedProduct(content.Product{ID: "prod-2", Name: "Yoga Club", Category: "Lifestyle", AccessType: content.AccessCommunity})
	backend.SeedModule("prod-1", content.Module{ID: "M1", Title: "Basics", Lessons: []content.Lesson{
		{ID: "l1", Title: "One"},
		{ID: "l2", Title: "Two", Progress: 50},
		{ID: "l3", Title: "Three", Progress: 100, Completed: true},
	}})
	backend.SeedModule("prod-1", content.Module{ID: "M2", Title: "Advanced"})
	backend.SeedPost("prod-1", content.Post{ID: "p1", Title: "Welcome", Content: "hi"})

	log := logger.Discard()
	gw := gateway.New(backend.URL, 5*time.Second, log)
	sessions := session.NewStore(cache.NewMemoryCache(), time.Hour)
	registry := workspace.NewRegistry(gw, log, time.Hour)
	t.Cleanup(registry.Close)

	cfg := &config.Config{
		Env:     "test",
		Locale:  "pt-BR",
		Session: config.SessionConfig{TTL: time.Hour, CookieName: "rfs_session"},
	}

	engine := gin.New()
	engine.Use(middleware.RequestID(), request.Handler(log))
	routes.Register(engine, cfg, log, sessions, gw, registry, map[string]health.Check{
		"backend": gw.HealthCheck,
	})

	return &console{engine: engine, backend: backend, registry: registry}
}

func (c *console) do(t *testing.T, method, path, sessionID string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}

	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (c *console) doJSON(t *testing.T, method, path, sessionID string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return c.do(t, method, path, sessionID, bytes.NewReader(raw), "application/json")
}

func (c *console) signIn(t *testing.T, token string) string {
	t.Helper()
	rec, env := c.doJSON(t, http.MethodPost, "/api/session", "", gin.H{"token": token})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var info struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &info))
	require.NotEmpty(t, info.SessionID)
	return info.SessionID
}

func memberToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, session.Claims{
		UserID: "u-2",
		Role:   "member",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, name := range files {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("binary"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestSessionLifecycle(t *testing.T) {
	c := newConsole(t)

	rec, _ := c.doJSON(t, http.MethodPost, "/api/session", "", gin.H{"token": "producer-token"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "rfs_session=")
	id := rec.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, id)

	rec, env := c.do(t, http.MethodGet, "/api/session", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, id, info["sessionId"])
	assert.Equal(t, true, info["canAuthor"])

	rec, _ = c.do(t, http.MethodDelete, "/api/session", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = c.do(t, http.MethodGet, "/api/session", id, nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSessionRequiresToken(t *testing.T) {
	c := newConsole(t)

	rec, env := c.doJSON(t, http.MethodPost, "/api/session", "", gin.H{"token": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestProductRoutesRequireSession(t *testing.T) {
	c := newConsole(t)

	rec, _ := c.do(t, http.MethodGet, "/api/products", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, c.backend.TotalCalls())
}

func TestBearerTokenWorksWithoutStoredSession(t *testing.T) {
	c := newConsole(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer producer-token")
	rec := httptest.NewRecorder()
	c.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer producer-token", c.backend.Header("GET /products").Get("Authorization"))
}

func TestListProductsFiltersByQuery(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	rec, env := c.do(t, http.MethodGet, "/api/products?q=%20ACADEMY", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	products := decode[[]map[string]interface{}](t, env.Data)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-1", products[0]["id"])
}

func TestListProductsPages(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	rec, env := c.do(t, http.MethodGet, "/api/products?page=2&limit=1", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	products := decode[[]map[string]interface{}](t, env.Data)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-2", products[0]["id"])

	meta := decode[map[string]interface{}](t, env.Pagination)
	assert.EqualValues(t, 2, meta["totalItems"])
	assert.Equal(t, false, meta["hasNextPage"])
	assert.Equal(t, true, meta["hasPrevPage"])
}

func TestWorkspaceLoadsOncePerSession(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	rec, env := c.do(t, http.MethodGet, "/api/products/prod-1/workspace", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[workspace.View](t, env.Data)
	assert.Equal(t, "Go Academy", view.Product.Name)
	require.Len(t, view.Modules, 2)
	assert.Equal(t, "1/3", view.Modules[0].ProgressLabel)
	assert.Len(t, view.Posts, 1)

	rec, _ = c.do(t, http.MethodGet, "/api/products/prod-1/workspace", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, c.backend.Calls("GET /modules/product/:productId"))
	assert.Equal(t, 1, c.registry.Len())

	rec, _ = c.do(t, http.MethodGet, "/api/products/prod-1/workspace?refresh=true", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, c.backend.Calls("GET /modules/product/:productId"))
}

func TestWorkspaceRejectsUnsafeProductID(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	rec, _ := c.do(t, http.MethodGet, "/api/products/bad%20id/workspace", id, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, c.backend.TotalCalls())
}

func TestCreateModuleWithImage(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	body, ct := multipartBody(t, map[string]string{"title": "Intro", "description": "First steps"}, map[string]string{"image": "cover.png"})
	rec, env := c.do(t, http.MethodPost, "/api/products/prod-1/modules", id, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "Intro", created["title"])
	assert.Equal(t, "cover.png", c.backend.File("POST /modules", "image"))
	assert.Equal(t, "prod-1", c.backend.Form("POST /modules")["productId"])

	_, env = c.do(t, http.MethodGet, "/api/products/prod-1/workspace", id, nil, "")
	assert.Len(t, decode[workspace.View](t, env.Data).Modules, 3)
}

func TestLessonValidationNeverReachesBackend(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")
	c.do(t, http.MethodGet, "/api/products/prod-1/workspace", id, nil, "")
	before := c.backend.TotalCalls()

	rec, env := c.doJSON(t, http.MethodPost, "/api/products/prod-1/modules/M1/lessons", id, gin.H{"title": "Intro"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	fb := decode[map[string]interface{}](t, env.Error)
	assert.Equal(t, "inline", fb["surface"])
	fields, ok := fb["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "description")
	assert.Contains(t, fields, "video")
	assert.Equal(t, content.ErrRequiredFields.Error(), env.Message)
	assert.Equal(t, before, c.backend.TotalCalls())
}

func TestLessonRejectsVideoAndYouTubeTogether(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	body, ct := multipartBody(t, map[string]string{
		"title":       "Intro",
		"description": "Welcome",
		"youtubeUrl":  "https://youtu.be/abc",
	}, map[string]string{"video": "intro.mp4"})
	rec, _ := c.do(t, http.MethodPost, "/api/products/prod-1/modules/M1/lessons", id, body, ct)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, c.backend.Calls("POST /lessons"))
}

func TestCreateLessonWithYouTubeLink(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	body, ct := multipartBody(t, map[string]string{
		"title":       "Intro",
		"description": "Welcome",
		"youtubeUrl":  "https://www.youtube.com/watch?v=abc",
	}, nil)
	rec, env := c.do(t, http.MethodPost, "/api/products/prod-1/modules/M1/lessons", id, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	lesson := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "https://www.youtube.com/embed/abc", lesson["embedUrl"])
	assert.Equal(t, 1, c.backend.Calls("GET /modules/:id"))
}

func TestProgressReturnsClientMean(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	rec, env := c.doJSON(t, http.MethodPost, "/api/products/prod-1/modules/M1/lessons/l1/progress", id, gin.H{"progress": 100, "completed": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	module := decode[map[string]interface{}](t, env.Data)
	assert.EqualValues(t, 83, module["progress"])
	assert.Equal(t, "2/3", module["progressLabel"])
	assert.Equal(t, 1, c.backend.Calls("POST /lessons/:id/progress"))
}

func TestSummaryModulesExpandOnDemand(t *testing.T) {
	c := newConsole(t)
	c.backend.ListSummaries()
	id := c.signIn(t, "producer-token")

	rec, env := c.do(t, http.MethodGet, "/api/products/prod-1/modules/M1", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	module := decode[map[string]interface{}](t, env.Data)
	assert.Len(t, module["lessons"], 3)
	assert.Equal(t, 1, c.backend.Calls("GET /modules/:id"))

	rec, env = c.do(t, http.MethodPost, "/api/products/prod-1/modules/M1/lessons/l1/complete", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	module = decode[map[string]interface{}](t, env.Data)
	assert.EqualValues(t, 2, module["completedLessons"])

	rec, _ = c.do(t, http.MethodDelete, "/api/products/prod-1/modules/M1/lessons/l2?confirm=true", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = c.do(t, http.MethodGet, "/api/products/prod-1/modules/M1", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	module = decode[map[string]interface{}](t, env.Data)
	assert.EqualValues(t, 2, module["lessonsCount"])
}

func TestProgressForLessonOutsideModuleIsNotFound(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	rec, _ := c.doJSON(t, http.MethodPost, "/api/products/prod-1/modules/M2/lessons/l1/progress", id, gin.H{"progress": 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, c.backend.Calls("POST /lessons/:id/progress"))
}

func TestCompleteLesson(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	rec, env := c.do(t, http.MethodPost, "/api/products/prod-1/modules/M1/lessons/l2/complete", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	module := decode[map[string]interface{}](t, env.Data)
	assert.EqualValues(t, 2, module["completedLessons"])
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	rec, env := c.do(t, http.MethodDelete, "/api/products/prod-1/modules/M2", id, nil, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	prompt := decode[map[string]map[string]string](t, env.Data)
	assert.Equal(t, "module", prompt["confirmation"]["entityType"])
	assert.Equal(t, "Advanced", prompt["confirmation"]["title"])
	assert.Zero(t, c.backend.Calls("DELETE /modules/:id"))

	rec, _ = c.do(t, http.MethodDelete, "/api/products/prod-1/modules/M2?confirm=true", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, c.backend.Calls("DELETE /modules/:id"))

	_, env = c.do(t, http.MethodGet, "/api/products/prod-1/workspace", id, nil, "")
	assert.Len(t, decode[workspace.View](t, env.Data).Modules, 1)
}

func TestDeleteFailureIsAnAlert(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")
	c.do(t, http.MethodGet, "/api/products/prod-1/workspace", id, nil, "")
	c.backend.FailNext("DELETE /posts/:id", http.StatusInternalServerError, "oops")

	rec, env := c.do(t, http.MethodDelete, "/api/products/prod-1/posts/p1?confirm=true", id, nil, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	fb := decode[map[string]interface{}](t, env.Error)
	assert.Equal(t, "alert", fb["surface"])
	assert.Equal(t, "something went wrong, please try again", env.Message)
}

func TestMemberCannotAuthorButCanTrackProgress(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, memberToken(t))

	rec, env := c.doJSON(t, http.MethodPost, "/api/products/prod-1/modules", id, gin.H{"title": "Hack", "description": "nope"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "banner", decode[map[string]interface{}](t, env.Error)["surface"])
	assert.Zero(t, c.backend.Calls("POST /modules"))

	rec, _ = c.doJSON(t, http.MethodPost, "/api/products/prod-1/modules/M1/lessons/l1/progress", id, gin.H{"progress": 30})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSelection(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	rec, env := c.doJSON(t, http.MethodPut, "/api/products/prod-1/selection", id, gin.H{"moduleId": "M1", "lessonId": "l2"})
	require.Equal(t, http.StatusOK, rec.Code)
	sel := decode[map[string]string](t, env.Data)
	assert.Equal(t, "M1", sel["moduleId"])
	assert.Equal(t, "l2", sel["lessonId"])

	rec, _ = c.doJSON(t, http.MethodPut, "/api/products/prod-1/selection", id, gin.H{"moduleId": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = c.doJSON(t, http.MethodPut, "/api/products/prod-1/selection", id, gin.H{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[map[string]string](t, env.Data))
}

func TestCommunityRoutes(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")

	body, ct := multipartBody(t, map[string]string{"title": "News", "content": "Big launch"}, map[string]string{"image": "banner.jpg"})
	rec, _ := c.do(t, http.MethodPost, "/api/products/prod-1/posts", id, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "banner.jpg", c.backend.File("POST /posts", "image"))

	rec, env := c.doJSON(t, http.MethodPost, "/api/products/prod-1/groups", id, gin.H{
		"name":      "VIP",
		"platform":  "TELEGRAM",
		"inviteUrl": "https://t.me/joinchat/x",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	group := decode[content.PrivateGroup](t, env.Data)

	rec, _ = c.do(t, http.MethodDelete, "/api/products/prod-1/groups/"+group.ID+"?confirm=true", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = c.do(t, http.MethodGet, "/api/products/prod-1/workspace", id, nil, "")
	view := decode[workspace.View](t, env.Data)
	assert.Len(t, view.Posts, 2)
	assert.Equal(t, "News", view.Posts[0].Title)
	assert.Empty(t, view.Groups)
}

func TestLogoutDropsWorkspaces(t *testing.T) {
	c := newConsole(t)
	id := c.signIn(t, "producer-token")
	c.do(t, http.MethodGet, "/api/products/prod-1/workspace", id, nil, "")
	require.Equal(t, 1, c.registry.Len())

	rec, _ := c.do(t, http.MethodDelete, "/api/session", id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, c.registry.Len())
}

func TestReadiness(t *testing.T) {
	c := newConsole(t)

	rec, _ := c.do(t, http.MethodGet, "/ready", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	c.backend.FailNext("GET /health-check", http.StatusServiceUnavailable, "")
	rec, _ = c.do(t, http.MethodGet, "/ready", "", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"unhealthy"`)
}
