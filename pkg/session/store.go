package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/cache"
)

const keyPrefix = "token:"

// Store persists session tokens in a cache.Client.
type Store struct {
	cache cache.Client
	ttl   time.Duration
}

// NewStore creates a store whose entries live for ttl after their last use.
func NewStore(c cache.Client, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl}
}

// Create saves token under a fresh session id.
func (s *Store) Create(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, apperrors.Validation("token is required", map[string]string{"token": "token is required"})
	}

	sess := FromToken(uuid.NewString(), token)
	if err := sess.Require(time.Now()); err != nil {
		return Session{}, err
	}

	if err := s.cache.Set(ctx, key(sess.ID), token, s.ttl); err != nil {
		return Session{}, apperrors.Wrap(err, "failed to store session", http.StatusInternalServerError, apperrors.ErrInternal)
	}
	return sess, nil
}

// Load returns the session for id and refreshes its expiration.
func (s *Store) Load(ctx context.Context, id string) (Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Session{}, apperrors.Unauthorized(ErrMissingToken.Error(), ErrMissingToken)
	}

	token, err := s.cache.Get(ctx, key(id))
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return Session{}, apperrors.Unauthorized(ErrMissingToken.Error(), err)
		}
		return Session{}, apperrors.Wrap(err, "failed to load session", http.StatusInternalServerError, apperrors.ErrInternal)
	}

	if s.ttl > 0 {
		_ = s.cache.Expire(ctx, key(id), s.ttl)
	}
	return FromToken(id, token), nil
}

// Delete forgets the session.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, key(id))
}

func key(id string) string {
	return keyPrefix + id
}
