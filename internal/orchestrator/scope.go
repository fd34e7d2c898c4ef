package orchestrator

import (
	"context"
	"sync"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
)

// Scope ties in-flight work to the lifetime of the view that started it.
// Results that arrive after Close are dropped without touching the store.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewScope opens a scope under parent.
func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context returns the context operations in this scope should run with.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Close abandons everything still running in the scope.
func (s *Scope) Close() {
	s.once.Do(s.cancel)
}

// Alive reports whether the scope is still open.
func (s *Scope) Alive() bool {
	return s.ctx.Err() == nil
}

// abandoned reports a cancelled error when ctx ended while a call was pending.
func abandoned(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Cancelled(err)
	}
	return nil
}
