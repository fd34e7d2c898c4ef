package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
)

// RoleMember is the role that may consume but not author content.
const RoleMember = "MEMBER"

var (
	ErrMissingToken = errors.New("authentication required")
	ErrExpiredToken = errors.New("session has expired, please sign in again")
)

// Claims are the parts of the platform access token the console reads.
// The signature is never verified here; the backend remains the authority.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Session is the authenticated context passed explicitly to every backend call.
type Session struct {
	ID     string
	Token  string
	Claims *Claims
}

// FromToken builds a session for token. Tokens that are not JWTs are kept
// as opaque bearer tokens with no claims.
func FromToken(id, token string) Session {
	token = strings.TrimSpace(token)
	s := Session{ID: id, Token: token}
	if token == "" {
		return s
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		s.Claims = claims
	}
	return s
}

// Require reports whether the session can be used for a backend call at now.
func (s Session) Require(now time.Time) error {
	if s.Token == "" {
		return apperrors.Unauthorized(ErrMissingToken.Error(), ErrMissingToken)
	}
	if s.Claims != nil && s.Claims.ExpiresAt != nil && !now.Before(s.Claims.ExpiresAt.Time) {
		return apperrors.Unauthorized(ErrExpiredToken.Error(), ErrExpiredToken)
	}
	return nil
}

// Role returns the role claim, or "" for opaque tokens.
func (s Session) Role() string {
	if s.Claims == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(s.Claims.Role))
}

// UserID returns the subject id claim, or "" for opaque tokens.
func (s Session) UserID() string {
	if s.Claims == nil {
		return ""
	}
	if s.Claims.UserID != "" {
		return s.Claims.UserID
	}
	return s.Claims.Subject
}

// CanAuthor reports whether the session may create, edit or delete content.
func (s Session) CanAuthor() bool {
	return s.Role() != RoleMember
}

type ctxKey struct{}

// WithContext stores s in ctx.
func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
