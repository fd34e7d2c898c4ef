package workspace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/gateway"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/orchestrator"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/presentation"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/middleware"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/pagination"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/response"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/validation"
)

// Catalog lists the products a session can open.
type Catalog interface {
	ListProducts(ctx context.Context, sess session.Session) ([]content.Product, error)
	FetchProduct(ctx context.Context, sess session.Session, productID string) (content.Product, error)
}

// Handler serves the product screens: catalog, modules, lessons, progress
// and community content.
type Handler struct {
	registry *Registry
	catalog  Catalog
	logger   *slog.Logger
	locale   string
}

// NewHandler constructs a workspace handler rendering dates and prices in locale
// unless a request asks for another one.
func NewHandler(registry *Registry, catalog Catalog, logger *slog.Logger, locale string) *Handler {
	return &Handler{registry: registry, catalog: catalog, logger: logger, locale: locale}
}

// ListProducts returns the product cards, filtered by ?q= and paged when
// ?page= or ?limit= is given.
func (h *Handler) ListProducts(c *gin.Context) {
	sess, _ := middleware.GetSession(c)

	products, err := h.catalog.ListProducts(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}

	filtered := presentation.FilterProducts(products, c.Query("q"))
	if !pagination.Requested(c) {
		response.Success(c, http.StatusOK, h.presenter(c).Products(filtered), "", nil)
		return
	}

	page, meta := pagination.Slice(filtered, pagination.Extract(c))
	response.Success(c, http.StatusOK, h.presenter(c).Products(page), "", meta)
}

// GetProduct returns one product card.
func (h *Handler) GetProduct(c *gin.Context) {
	sess, _ := middleware.GetSession(c)

	product, err := h.catalog.FetchProduct(c.Request.Context(), sess, c.Param("productId"))
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}
	response.Success(c, http.StatusOK, h.presenter(c).Product(product), "", nil)
}

// Get loads the product workspace on first use, or again with ?refresh=true.
// ?q= filters the rendered modules.
func (h *Handler) Get(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}

	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		ctx, done := ws.Bind(c.Request.Context())
		defer done()
		if _, err := ws.LoadProduct(ctx, sess); err != nil {
			h.fail(c, err, orchestrator.FlowAuthoring)
			return
		}
	}

	response.Success(c, http.StatusOK, h.view(c, ws), "", nil)
}

// GetModule returns one module with its lessons, fetching them when the
// workspace only holds the module summary.
func (h *Handler) GetModule(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}

	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	m, err := ws.OpenModule(ctx, sess, c.Param("moduleId"))
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}
	response.Success(c, http.StatusOK, h.presenter(c).Module(m), "", nil)
}

// CreateModule adds a module to the product.
func (h *Handler) CreateModule(c *gin.Context) {
	h.submitModule(c, "")
}

// UpdateModule edits a module's metadata and image.
func (h *Handler) UpdateModule(c *gin.Context) {
	h.submitModule(c, c.Param("moduleId"))
}

func (h *Handler) submitModule(c *gin.Context, moduleID string) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}

	var req moduleRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, invalidPayload(err), orchestrator.FlowAuthoring)
		return
	}

	image, closeImage, err := formFile(c, "image")
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}
	defer closeImage()

	form := content.ModuleForm{
		EditingID:    moduleID,
		ModuleFields: content.ModuleFields{Title: req.Title, Description: req.Description},
		Image:        image,
		RemoveImage:  req.RemoveImage,
	}

	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	m, err := ws.SubmitModule(ctx, sess, &form)
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}

	if moduleID == "" {
		response.Created(c, h.presenter(c).Module(m), "Module created")
		return
	}
	response.Success(c, http.StatusOK, h.presenter(c).Module(m), "Module updated", nil)
}

// DeleteModule removes a module and its lessons once confirmed.
func (h *Handler) DeleteModule(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}

	confirm, prompt := confirmFrom(c)
	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	deleted, err := ws.DeleteModule(ctx, sess, c.Param("moduleId"), confirm)
	h.respondDelete(c, deleted, err, prompt, "Module deleted")
}

// CreateLesson adds a lesson to a module.
func (h *Handler) CreateLesson(c *gin.Context) {
	h.submitLesson(c, "")
}

// UpdateLesson edits a lesson. Without new media the current video is kept.
func (h *Handler) UpdateLesson(c *gin.Context) {
	h.submitLesson(c, c.Param("lessonId"))
}

func (h *Handler) submitLesson(c *gin.Context, lessonID string) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}

	var req lessonRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, invalidPayload(err), orchestrator.FlowAuthoring)
		return
	}

	video, closeVideo, err := formFile(c, "video")
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}
	defer closeVideo()

	if video != nil && req.YouTubeURL != "" {
		msg := gateway.ErrConflictingMedia.Error()
		h.fail(c, apperrors.Validation(msg, map[string]string{"video": msg}), orchestrator.FlowAuthoring)
		return
	}

	form := content.LessonForm{
		EditingID: lessonID,
		ModuleID:  c.Param("moduleId"),
		LessonFields: content.LessonFields{
			Title:       req.Title,
			Description: req.Description,
			Duration:    req.Duration,
			MaterialURL: req.MaterialURL,
		},
		RemoveVideo: req.RemoveVideo,
	}
	form.SetVideoFile(video)
	form.SetYouTubeURL(req.YouTubeURL)

	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	l, err := ws.SubmitLesson(ctx, sess, &form)
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}

	if lessonID == "" {
		response.Created(c, h.presenter(c).Lesson(l), "Lesson created")
		return
	}
	response.Success(c, http.StatusOK, h.presenter(c).Lesson(l), "Lesson updated", nil)
}

// DeleteLesson removes a lesson once confirmed.
func (h *Handler) DeleteLesson(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}
	if !h.lessonInModule(c, ws, sess) {
		return
	}

	confirm, prompt := confirmFrom(c)
	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	deleted, err := ws.DeleteLesson(ctx, sess, c.Param("lessonId"), confirm)
	h.respondDelete(c, deleted, err, prompt, "Lesson deleted")
}

// UpdateProgress records a member's progress and returns the re-aggregated module.
func (h *Handler) UpdateProgress(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}
	if !h.lessonInModule(c, ws, sess) {
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, invalidPayload(err), orchestrator.FlowAuthoring)
		return
	}

	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	m, err := ws.UpdateLessonProgress(ctx, sess, c.Param("lessonId"), req.Progress, req.Completed)
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}
	response.Success(c, http.StatusOK, h.presenter(c).Module(m), "", nil)
}

// CompleteLesson marks a lesson as fully watched.
func (h *Handler) CompleteLesson(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}
	if !h.lessonInModule(c, ws, sess) {
		return
	}

	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	m, err := ws.MarkLessonComplete(ctx, sess, c.Param("lessonId"))
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}
	response.Success(c, http.StatusOK, h.presenter(c).Module(m), "Lesson completed", nil)
}

// Select opens a module or lesson in the detail views. An empty body closes them.
func (h *Handler) Select(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}

	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, invalidPayload(err), orchestrator.FlowAuthoring)
		return
	}

	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	var err error
	switch {
	case req.LessonID != "":
		err = ws.SelectLesson(ctx, sess, req.ModuleID, req.LessonID)
	case req.ModuleID != "":
		err = ws.SelectModule(ctx, sess, req.ModuleID)
	default:
		ws.ClearSelection()
	}
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}
	response.Success(c, http.StatusOK, ws.Store().Selection(), "", nil)
}

// CreatePost publishes a community post.
func (h *Handler) CreatePost(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}

	var req postRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, invalidPayload(err), orchestrator.FlowAuthoring)
		return
	}

	image, closeImage, err := formFile(c, "image")
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}
	defer closeImage()

	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	post, err := ws.CreatePost(ctx, sess, &content.PostForm{Title: req.Title, Content: req.Content, Image: image})
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}
	response.Created(c, h.presenter(c).Post(post), "Post published")
}

// DeletePost removes a community post once confirmed.
func (h *Handler) DeletePost(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}

	confirm, prompt := confirmFrom(c)
	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	deleted, err := ws.DeletePost(ctx, sess, c.Param("postId"), confirm)
	h.respondDelete(c, deleted, err, prompt, "Post deleted")
}

// CreateGroup links a private chat group to the product.
func (h *Handler) CreateGroup(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}

	var form content.PrivateGroupForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.fail(c, invalidPayload(err), orchestrator.FlowAuthoring)
		return
	}

	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	group, err := ws.CreatePrivateGroup(ctx, sess, &form)
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return
	}
	response.Created(c, group, "Group created")
}

// DeleteGroup unlinks a private group once confirmed.
func (h *Handler) DeleteGroup(c *gin.Context) {
	ws, sess, ok := h.open(c)
	if !ok {
		return
	}

	confirm, prompt := confirmFrom(c)
	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	deleted, err := ws.DeletePrivateGroup(ctx, sess, c.Param("groupId"), confirm)
	h.respondDelete(c, deleted, err, prompt, "Group deleted")
}

// open resolves the caller's workspace for :productId and loads it on first use.
func (h *Handler) open(c *gin.Context) (*Workspace, session.Session, bool) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		h.fail(c, apperrors.Unauthorized(session.ErrMissingToken.Error(), session.ErrMissingToken), orchestrator.FlowAuthoring)
		return nil, session.Session{}, false
	}

	productID, err := validation.NormalizeID("product", c.Param("productId"))
	if err != nil {
		h.fail(c, apperrors.Validation(err.Error(), map[string]string{"productId": err.Error()}), orchestrator.FlowAuthoring)
		return nil, session.Session{}, false
	}

	ws := h.registry.Open(sess.ID, productID)
	if ws.Loaded() {
		return ws, sess, true
	}

	ctx, done := ws.Bind(c.Request.Context())
	defer done()
	if _, err := ws.LoadProduct(ctx, sess); err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return nil, session.Session{}, false
	}
	return ws, sess, true
}

// lessonInModule checks :lessonId belongs to :moduleId, expanding a summary
// module first.
func (h *Handler) lessonInModule(c *gin.Context, ws *Workspace, sess session.Session) bool {
	ctx, done := ws.Bind(c.Request.Context())
	defer done()

	m, err := ws.OpenModule(ctx, sess, c.Param("moduleId"))
	if err != nil {
		h.fail(c, err, orchestrator.FlowAuthoring)
		return false
	}
	if m.LessonIndex(c.Param("lessonId")) < 0 {
		h.fail(c, apperrors.NotFound(content.ErrLessonNotFound), orchestrator.FlowAuthoring)
		return false
	}
	return true
}

func (h *Handler) view(c *gin.Context, ws *Workspace) View {
	p := h.presenter(c)
	snap := ws.Snapshot()
	modules := presentation.FilterModules(snap.Modules, c.Query("q"))

	return View{
		Product:   p.Product(snap.Product),
		Modules:   p.Modules(modules),
		Posts:     p.Posts(snap.Posts),
		Groups:    snap.Groups,
		Selection: snap.Selection,
		Summary:   p.Summary(snap.Modules),
		Actions:   ws.Statuses(),
	}
}

func (h *Handler) presenter(c *gin.Context) presentation.Presenter {
	locale := c.Query("locale")
	if locale == "" {
		locale = h.locale
	}
	return presentation.New(locale)
}

func (h *Handler) respondDelete(c *gin.Context, deleted bool, err error, prompt *orchestrator.Confirmation, message string) {
	if err != nil {
		h.fail(c, err, orchestrator.FlowDestructive)
		return
	}
	if !deleted {
		response.ErrorWithData(c, http.StatusConflict, ErrConfirmationRequired.Error(),
			confirmationView{Confirmation: *prompt}, "confirmation_required")
		return
	}
	response.Success(c, http.StatusOK, nil, message, nil)
}

// fail renders err the way the product screens show it.
func (h *Handler) fail(c *gin.Context, err error, flow orchestrator.Flow) {
	status := http.StatusInternalServerError
	if appErr, ok := apperrors.As(err); ok {
		status = appErr.StatusCode()
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request.Context(), "workspace request failed",
			slog.String("path", c.FullPath()),
			slog.Int("status", status),
			slog.String("error", err.Error()))
	}

	fb := orchestrator.FeedbackFor(err, flow)
	response.Error(c, status, fb.Message, fb)
}

// confirmFrom approves deletes carrying ?confirm=true. Otherwise the prompt
// is captured so it can be sent back to the caller.
func confirmFrom(c *gin.Context) (orchestrator.ConfirmFunc, *orchestrator.Confirmation) {
	prompt := &orchestrator.Confirmation{}
	if ok, _ := strconv.ParseBool(c.Query("confirm")); ok {
		return orchestrator.Always, prompt
	}
	return func(p orchestrator.Confirmation) bool {
		*prompt = p
		return false
	}, prompt
}

// formFile opens an optional file part. The returned func closes it.
func formFile(c *gin.Context, field string) (*content.Upload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, invalidPayload(err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, apperrors.Validation(ErrUnreadableUpload.Error(), map[string]string{field: ErrUnreadableUpload.Error()})
	}
	return &content.Upload{FileName: fh.Filename, Reader: f}, func() { _ = f.Close() }, nil
}

func invalidPayload(err error) error {
	return apperrors.Wrap(err, ErrInvalidPayload.Error(), http.StatusBadRequest, apperrors.ErrValidation)
}
