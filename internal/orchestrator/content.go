package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/gateway"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/hierarchy"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

// Snapshot is a consistent read of everything a product view renders.
type Snapshot struct {
	Community
	Modules   []content.Module    `json:"modules"`
	Selection hierarchy.Selection `json:"selection"`
}

// Snapshot reads the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	return Snapshot{
		Community: o.Community(),
		Modules:   o.store.Modules(),
		Selection: o.store.Selection(),
	}
}

// LoadProduct fetches the product, its modules and its community content
// concurrently and replaces the local state with the result.
func (o *Orchestrator) LoadProduct(ctx context.Context, sess session.Session) (Snapshot, error) {
	o.begin(ActionLoad)
	productID := o.store.ProductID()

	var (
		product content.Product
		modules []content.Module
		posts   []content.Post
		groups  []content.PrivateGroup
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		product, err = o.gw.FetchProduct(gctx, sess, productID)
		return err
	})
	g.Go(func() (err error) {
		modules, err = o.gw.ListProductModules(gctx, sess, productID)
		return err
	})
	g.Go(func() (err error) {
		posts, err = o.gw.ListPosts(gctx, sess, productID)
		return err
	})
	g.Go(func() (err error) {
		groups, err = o.gw.ListPrivateGroups(gctx, sess, productID)
		return err
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, o.finish(ActionLoad, FlowAuthoring, err)
	}
	if err := abandoned(ctx); err != nil {
		return Snapshot{}, o.finish(ActionLoad, FlowAuthoring, err)
	}

	o.store.Load(modules)
	o.mu.Lock()
	o.community = Community{Product: product, Posts: posts, Groups: groups}
	o.loaded = true
	o.mu.Unlock()

	o.finish(ActionLoad, FlowAuthoring, nil)
	return o.Snapshot(), nil
}

// SubmitModule creates or updates a module from form. On success the module
// is patched into the store, confirmed by a refetch and the form is reset.
func (o *Orchestrator) SubmitModule(ctx context.Context, sess session.Session, form *content.ModuleForm) (content.Module, error) {
	o.begin(ActionSubmitModule)
	fail := func(err error) (content.Module, error) {
		return content.Module{}, o.finish(ActionSubmitModule, FlowAuthoring, err)
	}

	if err := authorize(sess); err != nil {
		return fail(err)
	}
	if err := form.Validate(); err != nil {
		return fail(err)
	}

	var (
		saved    content.Module
		existing content.Module
		err      error
	)
	if form.Editing() {
		var ok bool
		if existing, ok = o.store.Module(form.EditingID); !ok {
			return fail(moduleNotFound())
		}
		saved, err = o.gw.UpdateModule(ctx, sess, form.EditingID, o.store.ProductID(), form.ModuleFields, form.Image, form.RemoveImage)
	} else {
		saved, err = o.gw.CreateModule(ctx, sess, o.store.ProductID(), form.ModuleFields, form.Image)
	}
	if err != nil {
		return fail(err)
	}
	if err := abandoned(ctx); err != nil {
		return fail(err)
	}

	if saved.Lessons == nil {
		if form.Editing() {
			saved.Lessons = existing.Lessons
			if saved.LessonsCount == 0 {
				saved.LessonsCount = existing.LessonsCount
			}
		} else {
			saved.Lessons = []content.Lesson{}
		}
	}
	if err := o.store.ReplaceModule(saved); err != nil {
		return fail(err)
	}
	o.reconcile(ctx, sess, saved.ID)

	form.Reset()
	o.finish(ActionSubmitModule, FlowAuthoring, nil)

	if m, ok := o.store.Module(saved.ID); ok {
		return m, nil
	}
	return saved, nil
}

// DeleteModule asks confirm and, once approved, deletes the module with all
// of its lessons. A declined confirmation is a no-op and returns false.
func (o *Orchestrator) DeleteModule(ctx context.Context, sess session.Session, moduleID string, confirm ConfirmFunc) (bool, error) {
	if err := authorize(sess); err != nil {
		return false, o.finish(ActionDeleteModule, FlowDestructive, err)
	}

	m, ok := o.store.Module(moduleID)
	if !ok {
		return false, o.finish(ActionDeleteModule, FlowDestructive, moduleNotFound())
	}
	if confirm == nil || !confirm(Confirmation{EntityType: "module", Title: m.Title}) {
		return false, nil
	}

	o.begin(ActionDeleteModule)
	if err := o.gw.DeleteModule(ctx, sess, moduleID); err != nil {
		return false, o.finish(ActionDeleteModule, FlowDestructive, err)
	}
	if err := abandoned(ctx); err != nil {
		return false, o.finish(ActionDeleteModule, FlowDestructive, err)
	}

	if err := o.store.RemoveModule(moduleID); err != nil {
		return false, o.finish(ActionDeleteModule, FlowDestructive, notFound(err))
	}
	o.finish(ActionDeleteModule, FlowDestructive, nil)
	return true, nil
}

// SubmitLesson creates or updates a lesson from form, then refetches its module.
func (o *Orchestrator) SubmitLesson(ctx context.Context, sess session.Session, form *content.LessonForm) (content.Lesson, error) {
	o.begin(ActionSubmitLesson)
	fail := func(err error) (content.Lesson, error) {
		return content.Lesson{}, o.finish(ActionSubmitLesson, FlowAuthoring, err)
	}

	if err := authorize(sess); err != nil {
		return fail(err)
	}
	if err := form.Validate(); err != nil {
		return fail(err)
	}

	moduleID := form.ModuleID
	if form.Editing() && moduleID == "" {
		current, ok := o.store.FindLesson(form.EditingID)
		if !ok {
			return fail(lessonNotFound())
		}
		moduleID = current.ModuleID
	}
	if _, ok := o.store.Module(moduleID); !ok {
		return fail(moduleNotFound())
	}

	var (
		saved content.Lesson
		err   error
	)
	media := gateway.MediaOf(form)
	if form.Editing() {
		saved, err = o.gw.UpdateLesson(ctx, sess, form.EditingID, moduleID, form.LessonFields, media)
	} else {
		saved, err = o.gw.CreateLesson(ctx, sess, moduleID, form.LessonFields, media)
	}
	if err != nil {
		return fail(err)
	}
	if err := abandoned(ctx); err != nil {
		return fail(err)
	}

	saved.ModuleID = moduleID
	if form.Editing() {
		if current, ok := o.store.Lesson(moduleID, saved.ID); ok {
			saved.Progress, saved.Completed = current.Progress, current.Completed
		}
	}
	if err := o.store.ReplaceLesson(saved); err != nil {
		return fail(notFound(err))
	}
	o.reconcile(ctx, sess, moduleID)

	form.Reset()
	o.finish(ActionSubmitLesson, FlowAuthoring, nil)

	if l, ok := o.store.Lesson(moduleID, saved.ID); ok {
		return l, nil
	}
	return saved, nil
}

// DeleteLesson asks confirm and, once approved, deletes the lesson. The
// parent's lesson count drops by one immediately and the module is refetched.
func (o *Orchestrator) DeleteLesson(ctx context.Context, sess session.Session, lessonID string, confirm ConfirmFunc) (bool, error) {
	if err := authorize(sess); err != nil {
		return false, o.finish(ActionDeleteLesson, FlowDestructive, err)
	}

	l, err := o.locateLesson(ctx, sess, lessonID)
	if err != nil {
		return false, o.finish(ActionDeleteLesson, FlowDestructive, err)
	}
	if confirm == nil || !confirm(Confirmation{EntityType: "lesson", Title: l.Title}) {
		return false, nil
	}

	o.begin(ActionDeleteLesson)
	if err := o.gw.DeleteLesson(ctx, sess, lessonID); err != nil {
		return false, o.finish(ActionDeleteLesson, FlowDestructive, err)
	}
	if err := abandoned(ctx); err != nil {
		return false, o.finish(ActionDeleteLesson, FlowDestructive, err)
	}

	if err := o.store.RemoveLesson(l.ModuleID, lessonID); err != nil {
		return false, o.finish(ActionDeleteLesson, FlowDestructive, notFound(err))
	}
	o.reconcile(ctx, sess, l.ModuleID)

	o.finish(ActionDeleteLesson, FlowDestructive, nil)
	return true, nil
}
