package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/response"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

// SessionHeader lets non-browser clients pass the session id without cookies.
const SessionHeader = "X-Session-ID"

const sessionKey = "session"

// SessionLoader resolves the caller's session from the session header or
// cookie and, failing that, from a bearer token used directly. Requests
// without credentials pass through unresolved.
func SessionLoader(store *session.Store, cookieName string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok, err := resolveSession(c, store, cookieName)
		if err != nil {
			if appErr, isApp := apperrors.As(err); isApp && appErr.StatusCode() >= http.StatusInternalServerError {
				response.ErrorWithLog(logger, c, appErr.StatusCode(), appErr.Message(), err)
				c.Abort()
				return
			}
		}
		if ok {
			c.Set(sessionKey, sess)
			c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), sess))
		}
		c.Next()
	}
}

// RequireSession rejects requests that SessionLoader could not resolve.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetSession(c); !ok {
			response.Error(c, http.StatusUnauthorized, session.ErrMissingToken.Error(), gin.H{"code": apperrors.ErrUnauthorized})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession returns the session resolved for this request.
func GetSession(c *gin.Context) (session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}

// SessionID returns the id of the resolved session, or "".
func SessionID(c *gin.Context) string {
	sess, ok := GetSession(c)
	if !ok {
		return ""
	}
	return sess.ID
}

func resolveSession(c *gin.Context, store *session.Store, cookieName string) (session.Session, bool, error) {
	id := strings.TrimSpace(c.GetHeader(SessionHeader))
	if id == "" && cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil {
			id = strings.TrimSpace(cookie)
		}
	}
	if id != "" {
		sess, err := store.Load(c.Request.Context(), id)
		if err != nil {
			return session.Session{}, false, err
		}
		return sess, true, nil
	}

	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return session.Session{}, false, nil
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return session.Session{}, false, nil
	}

	// Direct bearer callers get a stable id per token so workspaces persist
	// between their requests.
	return session.FromToken(uuid.NewSHA1(uuid.NameSpaceOID, []byte(token)).String(), token), true, nil
}
