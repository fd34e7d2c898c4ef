package gateway_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/gateway"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/gateway/gatewaytest"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/logger"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/request"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

var producer = session.FromToken("s1", "opaque-producer-token")

func setup(t *testing.T) (*gateway.Client, *gatewaytest.Backend) {
	t.Helper()
	backend := gatewaytest.New(t)
	return gateway.New(backend.URL, 5*time.Second, logger.Discard()), backend
}

func TestMissingTokenFailsBeforeNetwork(t *testing.T) {
	client, backend := setup(t)
	ctx := context.Background()

	_, err := client.FetchModule(ctx, session.Session{}, "mod-1")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	err = client.UpdateLessonProgress(ctx, session.Session{}, "les-1", 10, false)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	_, err = client.CreateModule(ctx, session.Session{}, "prod-1", content.ModuleFields{Title: "t", Description: "d"}, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	assert.Zero(t, backend.TotalCalls())
}

func TestCreateModuleSendsMultipart(t *testing.T) {
	client, backend := setup(t)
	ctx := request.WithID(context.Background(), "req-42")

	m, err := client.CreateModule(ctx, producer, "prod-1",
		content.ModuleFields{Title: " Basics ", Description: "Start here"},
		&content.Upload{FileName: "cover.png", Reader: strings.NewReader("png")})
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Basics", m.Title)
	assert.Equal(t, "/uploads/cover.png", m.Image)

	form := backend.Form("POST /modules")
	assert.Equal(t, "Basics", form["title"])
	assert.Equal(t, "prod-1", form["productId"])
	assert.Equal(t, "cover.png", backend.File("POST /modules", "image"))

	h := backend.Header("POST /modules")
	assert.Equal(t, "Bearer opaque-producer-token", h.Get("Authorization"))
	assert.Equal(t, "req-42", h.Get(request.IDHeader))
	assert.Contains(t, h.Get("Content-Type"), "multipart/form-data")
}

func TestUpdateModuleRemovesImage(t *testing.T) {
	client, backend := setup(t)
	seeded := backend.SeedModule("prod-1", content.Module{Title: "Old", Image: "/uploads/a.png"})

	m, err := client.UpdateModule(context.Background(), producer, seeded.ID, "prod-1",
		content.ModuleFields{Title: "New", Description: "d"}, nil, true)
	require.NoError(t, err)

	assert.Equal(t, "New", m.Title)
	assert.Empty(t, m.Image)
	assert.Equal(t, "true", backend.Form("PUT /modules/:id")["removeImage"])
	assert.Equal(t, "prod-1", backend.Form("PUT /modules/:id")["productId"])
}

func TestLessonLifecycle(t *testing.T) {
	client, backend := setup(t)
	ctx := context.Background()
	mod := backend.SeedModule("prod-1", content.Module{Title: "Basics"})

	lesson, err := client.CreateLesson(ctx, producer, mod.ID,
		content.LessonFields{Title: "Intro", Description: "Welcome"},
		gateway.LessonMedia{YouTubeURL: "https://youtu.be/abc"})
	require.NoError(t, err)
	assert.Equal(t, mod.ID, lesson.ModuleID)
	assert.Equal(t, "https://youtu.be/abc", lesson.VideoURL)
	assert.Equal(t, mod.ID, backend.Form("POST /lessons")["moduleId"])

	updated, err := client.UpdateLesson(ctx, producer, lesson.ID, mod.ID,
		content.LessonFields{Title: "Intro v2", Description: "Welcome"},
		gateway.LessonMedia{Video: &content.Upload{FileName: "intro.mp4", Reader: strings.NewReader("mp4")}})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/intro.mp4", updated.VideoURL)

	require.NoError(t, client.UpdateLessonProgress(ctx, producer, lesson.ID, 40, false))
	assert.Contains(t, backend.Header("POST /lessons/:id/progress").Get("Content-Type"), "application/json")

	fetched, err := client.FetchModule(ctx, producer, mod.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Lessons, 1)
	assert.Equal(t, 40, fetched.Lessons[0].Progress)

	require.NoError(t, client.DeleteLesson(ctx, producer, lesson.ID))
	fetched, err = client.FetchModule(ctx, producer, mod.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.Lessons)
}

func TestConflictingMediaIsRejectedLocally(t *testing.T) {
	client, backend := setup(t)

	_, err := client.CreateLesson(context.Background(), producer, "mod-1",
		content.LessonFields{Title: "Intro", Description: "d"},
		gateway.LessonMedia{
			Video:      &content.Upload{FileName: "a.mp4", Reader: strings.NewReader("x")},
			YouTubeURL: "https://youtu.be/abc",
		})

	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Zero(t, backend.TotalCalls())
}

func TestNonSuccessStatusCarriesBackendMessage(t *testing.T) {
	client, backend := setup(t)
	backend.FailNext("DELETE /modules/:id", http.StatusConflict, `{"message":"module has enrolled members"}`)

	err := client.DeleteModule(context.Background(), producer, "mod-1")

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrHTTP, appErr.Code())
	assert.Equal(t, http.StatusConflict, appErr.StatusCode())
	assert.Equal(t, "module has enrolled members", appErr.Message())
}

func TestUnreadableErrorBodyFallsBackToDefaultMessage(t *testing.T) {
	client, backend := setup(t)
	backend.FailNext("GET /modules/:id", http.StatusInternalServerError, `<html>oops</html>`)

	_, err := client.FetchModule(context.Background(), producer, "mod-1")

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.DefaultHTTPMessage, appErr.Message())
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode())
}

func TestShapeMismatchIsDecodeError(t *testing.T) {
	client, backend := setup(t)
	backend.FailNext("GET /modules/:id", http.StatusOK, `{"data":{"title":"no id"}}`)

	_, err := client.FetchModule(context.Background(), producer, "mod-1")
	assert.True(t, apperrors.Is(err, apperrors.ErrDecode))

	backend.FailNext("GET /modules/product/:productId", http.StatusOK, `{"data":"nope"}`)
	_, err = client.ListProductModules(context.Background(), producer, "prod-1")
	assert.True(t, apperrors.Is(err, apperrors.ErrDecode))
}

func TestBareAndEnvelopedPayloads(t *testing.T) {
	client, backend := setup(t)
	backend.FailNext("GET /modules/:id", http.StatusOK, `{"id":"mod-9","title":"Bare","lessons":null}`)

	m, err := client.FetchModule(context.Background(), producer, "mod-9")
	require.NoError(t, err)
	assert.Equal(t, "Bare", m.Title)
	assert.NotNil(t, m.Lessons)
}

func TestTransportFailure(t *testing.T) {
	client, backend := setup(t)
	backend.Close()

	_, err := client.ListProducts(context.Background(), producer)
	assert.True(t, apperrors.Is(err, apperrors.ErrTransport))
}

func TestCancelledContext(t *testing.T) {
	client, _ := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListProducts(ctx, producer)
	assert.True(t, apperrors.Is(err, apperrors.ErrCancelled))
}

func TestInvalidIDNeverReachesNetwork(t *testing.T) {
	client, backend := setup(t)

	err := client.DeleteLesson(context.Background(), producer, "../admin")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Zero(t, backend.TotalCalls())
}

func TestCommunityOperations(t *testing.T) {
	client, backend := setup(t)
	ctx := context.Background()
	backend.SeedProduct(content.Product{ID: "prod-1", Name: "Go Club", AccessType: content.AccessBoth})
	backend.SeedPost("prod-1", content.Post{Title: "Welcome", Content: "hi"})

	products, err := client.ListProducts(ctx, producer)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].HasCommunity())

	product, err := client.FetchProduct(ctx, producer, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Go Club", product.Name)

	post, err := client.CreatePost(ctx, producer, "prod-1", content.PostForm{Title: "News", Content: "body"})
	require.NoError(t, err)
	posts, err := client.ListPosts(ctx, producer, "prod-1")
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	require.NoError(t, client.DeletePost(ctx, producer, post.ID))

	group, err := client.CreatePrivateGroup(ctx, producer, "prod-1", content.PrivateGroupForm{
		Name: "VIP", Platform: content.PlatformTelegram, InviteURL: "https://t.me/+abc",
	})
	require.NoError(t, err)
	assert.Equal(t, "prod-1", group.ProductID)

	groups, err := client.ListPrivateGroups(ctx, producer, "prod-1")
	require.NoError(t, err)
	assert.Len(t, groups, 1)
	require.NoError(t, client.DeletePrivateGroup(ctx, producer, group.ID))
}

func TestHealthCheckNeedsNoSession(t *testing.T) {
	client, backend := setup(t)

	require.NoError(t, client.HealthCheck(context.Background()))
	assert.Equal(t, 1, backend.Calls("GET /health-check"))

	backend.FailNext("GET /health-check", http.StatusServiceUnavailable, `{"message":"db down"}`)
	assert.True(t, apperrors.Is(client.HealthCheck(context.Background()), apperrors.ErrHTTP))
}
