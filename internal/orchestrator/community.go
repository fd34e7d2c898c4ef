package orchestrator

import (
	"context"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

// CreatePost publishes a community post and appends it locally.
func (o *Orchestrator) CreatePost(ctx context.Context, sess session.Session, form *content.PostForm) (content.Post, error) {
	o.begin(ActionSubmitPost)
	fail := func(err error) (content.Post, error) {
		return content.Post{}, o.finish(ActionSubmitPost, FlowAuthoring, err)
	}

	if err := authorize(sess); err != nil {
		return fail(err)
	}
	if err := form.Validate(); err != nil {
		return fail(err)
	}

	post, err := o.gw.CreatePost(ctx, sess, o.store.ProductID(), *form)
	if err != nil {
		return fail(err)
	}
	if err := abandoned(ctx); err != nil {
		return fail(err)
	}

	o.mu.Lock()
	o.community.Posts = append([]content.Post{post}, o.community.Posts...)
	o.mu.Unlock()

	*form = content.PostForm{}
	o.finish(ActionSubmitPost, FlowAuthoring, nil)
	return post, nil
}

// DeletePost removes a post after confirmation.
func (o *Orchestrator) DeletePost(ctx context.Context, sess session.Session, postID string, confirm ConfirmFunc) (bool, error) {
	if err := authorize(sess); err != nil {
		return false, o.finish(ActionDeletePost, FlowDestructive, err)
	}

	o.mu.Lock()
	idx := -1
	for i, p := range o.community.Posts {
		if p.ID == postID {
			idx = i
			break
		}
	}
	var title string
	if idx >= 0 {
		title = o.community.Posts[idx].Title
	}
	o.mu.Unlock()

	if idx < 0 {
		return false, o.finish(ActionDeletePost, FlowDestructive, notFound(ErrPostNotFound))
	}
	if confirm == nil || !confirm(Confirmation{EntityType: "post", Title: title}) {
		return false, nil
	}

	o.begin(ActionDeletePost)
	if err := o.gw.DeletePost(ctx, sess, postID); err != nil {
		return false, o.finish(ActionDeletePost, FlowDestructive, err)
	}
	if err := abandoned(ctx); err != nil {
		return false, o.finish(ActionDeletePost, FlowDestructive, err)
	}

	o.mu.Lock()
	o.community.Posts = removeWhere(o.community.Posts, func(p content.Post) bool { return p.ID == postID })
	o.mu.Unlock()

	o.finish(ActionDeletePost, FlowDestructive, nil)
	return true, nil
}

// CreatePrivateGroup links a chat group and appends it locally.
func (o *Orchestrator) CreatePrivateGroup(ctx context.Context, sess session.Session, form *content.PrivateGroupForm) (content.PrivateGroup, error) {
	o.begin(ActionSubmitGroup)
	fail := func(err error) (content.PrivateGroup, error) {
		return content.PrivateGroup{}, o.finish(ActionSubmitGroup, FlowAuthoring, err)
	}

	if err := authorize(sess); err != nil {
		return fail(err)
	}
	if err := form.Validate(); err != nil {
		return fail(err)
	}

	group, err := o.gw.CreatePrivateGroup(ctx, sess, o.store.ProductID(), *form)
	if err != nil {
		return fail(err)
	}
	if err := abandoned(ctx); err != nil {
		return fail(err)
	}

	o.mu.Lock()
	o.community.Groups = append(o.community.Groups, group)
	o.mu.Unlock()

	*form = content.PrivateGroupForm{}
	o.finish(ActionSubmitGroup, FlowAuthoring, nil)
	return group, nil
}

// DeletePrivateGroup unlinks a chat group after confirmation.
func (o *Orchestrator) DeletePrivateGroup(ctx context.Context, sess session.Session, groupID string, confirm ConfirmFunc) (bool, error) {
	if err := authorize(sess); err != nil {
		return false, o.finish(ActionDeleteGroup, FlowDestructive, err)
	}

	o.mu.Lock()
	var (
		name  string
		found bool
	)
	for _, g := range o.community.Groups {
		if g.ID == groupID {
			name, found = g.Name, true
			break
		}
	}
	o.mu.Unlock()

	if !found {
		return false, o.finish(ActionDeleteGroup, FlowDestructive, notFound(ErrGroupNotFound))
	}
	if confirm == nil || !confirm(Confirmation{EntityType: "group", Title: name}) {
		return false, nil
	}

	o.begin(ActionDeleteGroup)
	if err := o.gw.DeletePrivateGroup(ctx, sess, groupID); err != nil {
		return false, o.finish(ActionDeleteGroup, FlowDestructive, err)
	}
	if err := abandoned(ctx); err != nil {
		return false, o.finish(ActionDeleteGroup, FlowDestructive, err)
	}

	o.mu.Lock()
	o.community.Groups = removeWhere(o.community.Groups, func(g content.PrivateGroup) bool { return g.ID == groupID })
	o.mu.Unlock()

	o.finish(ActionDeleteGroup, FlowDestructive, nil)
	return true, nil
}

func removeWhere[T any](items []T, match func(T) bool) []T {
	out := items[:0:0]
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out
}
