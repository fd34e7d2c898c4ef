package session

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/middleware"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/response"
	sessionpkg "github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

// Handler signs the console in and out of the platform backend.
type Handler struct {
	store    *sessionpkg.Store
	logger   *slog.Logger
	cookie   CookieConfig
	onLogout func(sessionID string)
}

// CookieConfig shapes the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge int
	Secure bool
}

// NewHandler constructs a session handler. onLogout runs after a session is
// dropped so per-session state can be released.
func NewHandler(store *sessionpkg.Store, logger *slog.Logger, cookie CookieConfig, onLogout func(sessionID string)) *Handler {
	return &Handler{store: store, logger: logger, cookie: cookie, onLogout: onLogout}
}

// Create stores the access token and hands back a session id.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation(ErrTokenRequired.Error(), map[string]string{"token": ErrTokenRequired.Error()}))
		return
	}

	sess, err := h.store.Create(c.Request.Context(), req.Token)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setCookie(c, sess.ID, h.cookie.MaxAge)
	c.Header(middleware.SessionHeader, sess.ID)
	response.Created(c, infoOf(sess), "Session started")
}

// Current describes the active session.
func (h *Handler) Current(c *gin.Context) {
	sess, ok := middleware.GetSession(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized(ErrNoSession.Error(), ErrNoSession))
		return
	}
	response.Success(c, http.StatusOK, infoOf(sess), "", nil)
}

// Delete signs out. Unknown sessions are not an error.
func (h *Handler) Delete(c *gin.Context) {
	if sess, ok := middleware.GetSession(c); ok {
		if err := h.store.Delete(c.Request.Context(), sess.ID); err != nil {
			h.logger.WarnContext(c.Request.Context(), "failed to drop session",
				slog.String("session_id", sess.ID),
				slog.String("error", err.Error()))
		}
		if h.onLogout != nil {
			h.onLogout(sess.ID)
		}
	}

	h.setCookie(c, "", -1)
	response.Success(c, http.StatusOK, nil, "Session ended", nil)
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	if h.cookie.Name == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

func infoOf(sess sessionpkg.Session) Info {
	info := Info{
		SessionID: sess.ID,
		UserID:    sess.UserID(),
		Role:      sess.Role(),
		CanAuthor: sess.CanAuthor(),
	}
	if sess.Claims != nil && sess.Claims.ExpiresAt != nil {
		exp := sess.Claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}
	return info
}
