// Package orchestrator drives create, edit, delete and progress actions
// against the backend and applies their results to the hierarchy store.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/gateway"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/hierarchy"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

// refetchTimeout bounds a shared module fetch once it no longer follows the
// context of the caller that started it.
const refetchTimeout = 30 * time.Second

// Gateway is the backend surface the orchestrator needs.
type Gateway interface {
	FetchProduct(ctx context.Context, sess session.Session, productID string) (content.Product, error)
	ListProductModules(ctx context.Context, sess session.Session, productID string) ([]content.Module, error)
	FetchModule(ctx context.Context, sess session.Session, moduleID string) (content.Module, error)
	CreateModule(ctx context.Context, sess session.Session, productID string, fields content.ModuleFields, image *content.Upload) (content.Module, error)
	UpdateModule(ctx context.Context, sess session.Session, moduleID, productID string, fields content.ModuleFields, image *content.Upload, removeImage bool) (content.Module, error)
	DeleteModule(ctx context.Context, sess session.Session, moduleID string) error
	CreateLesson(ctx context.Context, sess session.Session, moduleID string, fields content.LessonFields, media gateway.LessonMedia) (content.Lesson, error)
	UpdateLesson(ctx context.Context, sess session.Session, lessonID, moduleID string, fields content.LessonFields, media gateway.LessonMedia) (content.Lesson, error)
	DeleteLesson(ctx context.Context, sess session.Session, lessonID string) error
	UpdateLessonProgress(ctx context.Context, sess session.Session, lessonID string, progress int, completed bool) error
	ListPosts(ctx context.Context, sess session.Session, productID string) ([]content.Post, error)
	CreatePost(ctx context.Context, sess session.Session, productID string, form content.PostForm) (content.Post, error)
	DeletePost(ctx context.Context, sess session.Session, postID string) error
	ListPrivateGroups(ctx context.Context, sess session.Session, productID string) ([]content.PrivateGroup, error)
	CreatePrivateGroup(ctx context.Context, sess session.Session, productID string, form content.PrivateGroupForm) (content.PrivateGroup, error)
	DeletePrivateGroup(ctx context.Context, sess session.Session, groupID string) error
}

// Action names a user-initiated operation with its own state machine.
type Action string

const (
	ActionLoad         Action = "product.load"
	ActionSubmitModule Action = "module.submit"
	ActionDeleteModule Action = "module.delete"
	ActionSubmitLesson Action = "lesson.submit"
	ActionDeleteLesson Action = "lesson.delete"
	ActionProgress     Action = "lesson.progress"
	ActionSubmitPost   Action = "post.submit"
	ActionDeletePost   Action = "post.delete"
	ActionSubmitGroup  Action = "group.submit"
	ActionDeleteGroup  Action = "group.delete"
)

// State is a step of an action's lifecycle:
// idle -> submitting -> success -> idle, or submitting -> failed -> idle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// ActionStatus is the observable state of one action. Err and Feedback
// describe the last failure and are cleared when the action runs again.
type ActionStatus struct {
	State    State     `json:"state"`
	Err      error     `json:"-"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Confirmation is the prompt shown before a destructive action.
type Confirmation struct {
	EntityType string `json:"entityType"`
	Title      string `json:"title"`
}

// ConfirmFunc asks the user to approve a destructive action.
type ConfirmFunc func(Confirmation) bool

// Always approves every confirmation. Callers that collected approval
// up front pass it to delete operations.
func Always(Confirmation) bool { return true }

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for reconciliation failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTransitionHook observes every state change.
func WithTransitionHook(fn func(Action, State)) Option {
	return func(o *Orchestrator) { o.onTransition = fn }
}

// Orchestrator owns all writes to one product's hierarchy store.
type Orchestrator struct {
	store  *hierarchy.Store
	gw     Gateway
	logger *slog.Logger

	refetch singleflight.Group

	mu           sync.Mutex
	status       map[Action]ActionStatus
	inflight     map[string]struct{}
	community    Community
	loaded       bool
	onTransition func(Action, State)
}

// Community holds the product record and its community content.
type Community struct {
	Product content.Product        `json:"product"`
	Posts   []content.Post         `json:"posts"`
	Groups  []content.PrivateGroup `json:"groups"`
}

// New creates an orchestrator for store.
func New(store *hierarchy.Store, gw Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		gw:       gw,
		logger:   slog.Default(),
		status:   make(map[Action]ActionStatus),
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store exposes read access to the hierarchy.
func (o *Orchestrator) Store() *hierarchy.Store {
	return o.store
}

// ProductID returns the product being orchestrated.
func (o *Orchestrator) ProductID() string {
	return o.store.ProductID()
}

// Loaded reports whether LoadProduct has completed at least once.
func (o *Orchestrator) Loaded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loaded
}

// Status returns the state of action.
func (o *Orchestrator) Status(action Action) ActionStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	st, ok := o.status[action]
	if !ok {
		return ActionStatus{State: StateIdle}
	}
	return st
}

// Statuses returns the state of every action that has run.
func (o *Orchestrator) Statuses() map[Action]ActionStatus {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make(map[Action]ActionStatus, len(o.status))
	for k, v := range o.status {
		out[k] = v
	}
	return out
}

// Community returns a copy of the community content.
func (o *Orchestrator) Community() Community {
	o.mu.Lock()
	defer o.mu.Unlock()

	return Community{
		Product: o.community.Product,
		Posts:   append([]content.Post{}, o.community.Posts...),
		Groups:  append([]content.PrivateGroup{}, o.community.Groups...),
	}
}

// SelectModule opens a module in the detail view, fetching its lessons first
// when only a summary is loaded.
func (o *Orchestrator) SelectModule(ctx context.Context, sess session.Session, moduleID string) error {
	if _, err := o.OpenModule(ctx, sess, moduleID); err != nil {
		return err
	}
	if err := o.store.SelectModule(moduleID); err != nil {
		return notFound(err)
	}
	return nil
}

// SelectLesson opens a lesson in the detail view.
func (o *Orchestrator) SelectLesson(ctx context.Context, sess session.Session, moduleID, lessonID string) error {
	if _, err := o.OpenModule(ctx, sess, moduleID); err != nil {
		return err
	}
	if err := o.store.SelectLesson(moduleID, lessonID); err != nil {
		return notFound(err)
	}
	return nil
}

// ClearSelection closes the detail views.
func (o *Orchestrator) ClearSelection() {
	o.store.ClearSelection()
}

func (o *Orchestrator) begin(action Action) {
	o.mu.Lock()
	o.status[action] = ActionStatus{State: StateSubmitting}
	hook := o.onTransition
	o.mu.Unlock()

	if hook != nil {
		hook(action, StateSubmitting)
	}
}

// finish records the outcome and returns the action to idle.
func (o *Orchestrator) finish(action Action, flow Flow, err error) error {
	outcome := StateSuccess
	final := ActionStatus{State: StateIdle}
	if err != nil {
		outcome = StateFailed
		fb := FeedbackFor(err, flow)
		final.Err = err
		final.Feedback = &fb
	}

	o.mu.Lock()
	o.status[action] = final
	hook := o.onTransition
	o.mu.Unlock()

	if hook != nil {
		hook(action, outcome)
		hook(action, StateIdle)
	}
	return err
}

// authorize refuses authoring actions for read-only roles before any I/O.
func authorize(sess session.Session) error {
	if !sess.CanAuthor() {
		return apperrors.Forbidden(ErrReadOnlyRole.Error())
	}
	return nil
}

// OpenModule returns a module with its lessons. A summary module is expanded
// with a fetch of its subtree, shared with any refetch already running.
func (o *Orchestrator) OpenModule(ctx context.Context, sess session.Session, moduleID string) (content.Module, error) {
	m, ok := o.store.Module(moduleID)
	if !ok {
		return content.Module{}, moduleNotFound()
	}
	if !m.Summary() {
		return m, nil
	}

	fresh, err := o.fetchModule(ctx, sess, moduleID)
	if err != nil {
		return content.Module{}, err
	}
	if err := abandoned(ctx); err != nil {
		return content.Module{}, err
	}
	if fresh.Lessons == nil {
		fresh.Lessons = []content.Lesson{}
	}
	if err := o.store.ReplaceModule(fresh); err != nil {
		return content.Module{}, notFound(err)
	}

	if m, ok = o.store.Module(moduleID); !ok {
		return content.Module{}, moduleNotFound()
	}
	return m, nil
}

// locateLesson finds lessonID, expanding summary modules until it turns up.
func (o *Orchestrator) locateLesson(ctx context.Context, sess session.Session, lessonID string) (content.Lesson, error) {
	if l, ok := o.store.FindLesson(lessonID); ok {
		return l, nil
	}
	for _, m := range o.store.Modules() {
		if !m.Summary() {
			continue
		}
		expanded, err := o.OpenModule(ctx, sess, m.ID)
		if err != nil {
			return content.Lesson{}, err
		}
		if idx := expanded.LessonIndex(lessonID); idx >= 0 {
			return expanded.Lessons[idx], nil
		}
	}
	return content.Lesson{}, lessonNotFound()
}

// fetchModule fetches a module subtree. Concurrent fetches of one module share
// a single request, which runs detached from any one caller's cancellation so
// a caller that goes away does not fail the others. Callers check their own
// context afterwards.
func (o *Orchestrator) fetchModule(ctx context.Context, sess session.Session, moduleID string) (content.Module, error) {
	v, err, _ := o.refetch.Do(moduleID, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refetchTimeout)
		defer cancel()
		return o.gw.FetchModule(fctx, sess, moduleID)
	})
	if err != nil {
		return content.Module{}, err
	}
	return v.(content.Module).Clone(), nil
}

// reconcile refetches a module and replaces the local copy with the server's.
// Failures leave the patched state in place.
func (o *Orchestrator) reconcile(ctx context.Context, sess session.Session, moduleID string) {
	fresh, err := o.fetchModule(ctx, sess, moduleID)
	if err != nil {
		o.logger.WarnContext(ctx, "module refetch failed",
			slog.String("module_id", moduleID),
			slog.String("error", err.Error()))
		return
	}
	if ctx.Err() != nil {
		return
	}
	if _, ok := o.store.Module(moduleID); !ok {
		return
	}

	if err := o.store.ReplaceModule(fresh); err != nil {
		o.logger.WarnContext(ctx, "module refetch rejected",
			slog.String("module_id", moduleID),
			slog.String("error", err.Error()))
	}
}
