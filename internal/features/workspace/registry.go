package workspace

import (
	"context"
	"log/slog"
	"time"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/hierarchy"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/orchestrator"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/memory"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/metrics"
)

// Workspace is one session's view of one product.
type Workspace struct {
	*orchestrator.Orchestrator
	scope *orchestrator.Scope
}

// Bind derives a context for an operation started by a request. It ends when
// either the request ends or the workspace is discarded.
func (w *Workspace) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(w.scope.Context(), cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Registry keeps workspaces alive while they are in use.
type Registry struct {
	items  *memory.Cache[*Workspace]
	gw     orchestrator.Gateway
	logger *slog.Logger
}

// NewRegistry creates a registry whose workspaces are discarded after ttl
// without access.
func NewRegistry(gw orchestrator.Gateway, logger *slog.Logger, ttl time.Duration) *Registry {
	r := &Registry{
		items:  memory.New[*Workspace](ttl, time.Minute),
		gw:     gw,
		logger: logger,
	}
	r.items.OnEvict(func(key string, ws *Workspace) {
		ws.scope.Close()
		r.logger.Debug("workspace discarded", slog.String("key", key))
		metrics.SetOpenWorkspaces(r.items.Len())
	})
	return r
}

// Open returns the workspace for sessionID and productID, creating it on first use.
func (r *Registry) Open(sessionID, productID string) *Workspace {
	created := false
	ws := r.items.GetOrCreate(key(sessionID, productID), func() *Workspace {
		created = true
		return &Workspace{
			Orchestrator: orchestrator.New(hierarchy.NewStore(productID), r.gw, orchestrator.WithLogger(r.logger)),
			scope:        orchestrator.NewScope(context.Background()),
		}
	})
	if created {
		metrics.SetOpenWorkspaces(r.items.Len())
	}
	return ws
}

// Drop discards every workspace of sessionID, abandoning their pending work.
func (r *Registry) Drop(sessionID string) int {
	return r.items.DeletePrefix(sessionID + ":")
}

// Len reports how many workspaces are held, idle ones included.
func (r *Registry) Len() int {
	return r.items.Len()
}

// Close discards everything and stops the sweeper.
func (r *Registry) Close() {
	r.items.Close()
	r.items.DeletePrefix("")
}

func key(sessionID, productID string) string {
	return sessionID + ":" + productID
}
