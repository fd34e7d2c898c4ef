package orchestrator

import (
	"context"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/progress"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

// UpdateLessonProgress saves a member's progress on a lesson and re-aggregates
// its module. A second call for the same lesson while the first is pending
// fails with ErrProgressInFlight and never reaches the backend.
func (o *Orchestrator) UpdateLessonProgress(ctx context.Context, sess session.Session, lessonID string, value int, completed bool) (content.Module, error) {
	l, err := o.locateLesson(ctx, sess, lessonID)
	if err != nil {
		return content.Module{}, err
	}

	if !o.acquire(lessonID) {
		return content.Module{}, inFlight()
	}
	defer o.release(lessonID)

	o.begin(ActionProgress)
	u := progress.Update{LessonID: lessonID, Progress: value, Completed: completed}.Normalize()

	if err := o.gw.UpdateLessonProgress(ctx, sess, lessonID, u.Progress, u.Completed); err != nil {
		return content.Module{}, o.finish(ActionProgress, FlowAuthoring, err)
	}
	if err := abandoned(ctx); err != nil {
		return content.Module{}, o.finish(ActionProgress, FlowAuthoring, err)
	}

	if err := o.store.PatchLessonProgress(l.ModuleID, u); err != nil {
		return content.Module{}, o.finish(ActionProgress, FlowAuthoring, notFound(err))
	}
	o.reconcile(ctx, sess, l.ModuleID)
	o.finish(ActionProgress, FlowAuthoring, nil)

	m, _ := o.store.Module(l.ModuleID)
	return m, nil
}

// MarkLessonComplete records a lesson as fully watched.
func (o *Orchestrator) MarkLessonComplete(ctx context.Context, sess session.Session, lessonID string) (content.Module, error) {
	return o.UpdateLessonProgress(ctx, sess, lessonID, 100, true)
}

func (o *Orchestrator) acquire(lessonID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, busy := o.inflight[lessonID]; busy {
		return false
	}
	o.inflight[lessonID] = struct{}{}
	return true
}

func (o *Orchestrator) release(lessonID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, lessonID)
}
