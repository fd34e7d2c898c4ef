package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/session"
)

// ErrConflictingMedia is reported when a lesson carries both a video file and a YouTube link.
var ErrConflictingMedia = errors.New("choose either a video file or a YouTube link, not both")

// LessonMedia is the video part of a lesson submission.
// Video and YouTubeURL are mutually exclusive.
type LessonMedia struct {
	Video       *content.Upload
	YouTubeURL  string
	RemoveVideo bool
}

// MediaOf extracts the selected media from a lesson form.
func MediaOf(f *content.LessonForm) LessonMedia {
	return LessonMedia{
		Video:       f.VideoFile(),
		YouTubeURL:  f.YouTubeURL(),
		RemoveVideo: f.RemoveVideo,
	}
}

func (m LessonMedia) check() error {
	if m.Video != nil && strings.TrimSpace(m.YouTubeURL) != "" {
		return apperrors.Validation(ErrConflictingMedia.Error(), map[string]string{"video": ErrConflictingMedia.Error()})
	}
	return nil
}

// CreateModule creates a module under productID.
func (c *Client) CreateModule(ctx context.Context, sess session.Session, productID string, fields content.ModuleFields, image *content.Upload) (content.Module, error) {
	if _, err := entityPath("product", "%s", productID); err != nil {
		return content.Module{}, err
	}

	body, err := c.send(ctx, sess, "create_module", resty.MethodPost, "/modules", func(r *resty.Request) {
		r.SetMultipartFormData(map[string]string{
			"title":       strings.TrimSpace(fields.Title),
			"description": strings.TrimSpace(fields.Description),
			"productId":   strings.TrimSpace(productID),
		})
		attach(r, "image", image)
	})
	if err != nil {
		return content.Module{}, err
	}
	return decodeOne[content.Module]("module", body)
}

// UpdateModule edits a module of productID. removeImage drops the current
// image when no new one is sent.
func (c *Client) UpdateModule(ctx context.Context, sess session.Session, moduleID, productID string, fields content.ModuleFields, image *content.Upload, removeImage bool) (content.Module, error) {
	path, err := entityPath("module", "/modules/%s", moduleID)
	if err != nil {
		return content.Module{}, err
	}
	if _, err := entityPath("product", "%s", productID); err != nil {
		return content.Module{}, err
	}

	body, err := c.send(ctx, sess, "update_module", resty.MethodPut, path, func(r *resty.Request) {
		form := map[string]string{
			"title":       strings.TrimSpace(fields.Title),
			"description": strings.TrimSpace(fields.Description),
			"productId":   strings.TrimSpace(productID),
		}
		if removeImage && image == nil {
			form["removeImage"] = "true"
		}
		r.SetMultipartFormData(form)
		attach(r, "image", image)
	})
	if err != nil {
		return content.Module{}, err
	}
	return decodeOne[content.Module]("module", body)
}

// DeleteModule deletes a module and its lessons.
func (c *Client) DeleteModule(ctx context.Context, sess session.Session, moduleID string) error {
	path, err := entityPath("module", "/modules/%s", moduleID)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, sess, "delete_module", resty.MethodDelete, path, nil)
	return err
}

// FetchModule returns the full module subtree.
func (c *Client) FetchModule(ctx context.Context, sess session.Session, moduleID string) (content.Module, error) {
	path, err := entityPath("module", "/modules/%s", moduleID)
	if err != nil {
		return content.Module{}, err
	}

	body, err := c.send(ctx, sess, "fetch_module", resty.MethodGet, path, nil)
	if err != nil {
		return content.Module{}, err
	}
	m, err := decodeOne[content.Module]("module", body)
	if err != nil {
		return content.Module{}, err
	}
	if m.Lessons == nil {
		m.Lessons = []content.Lesson{}
	}
	return m, nil
}

// ListProductModules returns the modules of a product.
func (c *Client) ListProductModules(ctx context.Context, sess session.Session, productID string) ([]content.Module, error) {
	path, err := entityPath("product", "/modules/product/%s", productID)
	if err != nil {
		return nil, err
	}

	body, err := c.send(ctx, sess, "list_modules", resty.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[content.Module]("module list", body)
}

// CreateLesson creates a lesson under moduleID.
func (c *Client) CreateLesson(ctx context.Context, sess session.Session, moduleID string, fields content.LessonFields, media LessonMedia) (content.Lesson, error) {
	if _, err := entityPath("module", "%s", moduleID); err != nil {
		return content.Lesson{}, err
	}
	if err := media.check(); err != nil {
		return content.Lesson{}, err
	}

	body, err := c.send(ctx, sess, "create_lesson", resty.MethodPost, "/lessons", func(r *resty.Request) {
		form := lessonForm(fields, media)
		form["moduleId"] = strings.TrimSpace(moduleID)
		r.SetMultipartFormData(form)
		attach(r, "video", media.Video)
	})
	if err != nil {
		return content.Lesson{}, err
	}
	return decodeOne[content.Lesson]("lesson", body)
}

// UpdateLesson edits a lesson. moduleID may be empty when the lesson stays where it is.
func (c *Client) UpdateLesson(ctx context.Context, sess session.Session, lessonID, moduleID string, fields content.LessonFields, media LessonMedia) (content.Lesson, error) {
	path, err := entityPath("lesson", "/lessons/%s", lessonID)
	if err != nil {
		return content.Lesson{}, err
	}
	if err := media.check(); err != nil {
		return content.Lesson{}, err
	}

	body, err := c.send(ctx, sess, "update_lesson", resty.MethodPut, path, func(r *resty.Request) {
		form := lessonForm(fields, media)
		if id := strings.TrimSpace(moduleID); id != "" {
			form["moduleId"] = id
		}
		if media.RemoveVideo && media.Video == nil && media.YouTubeURL == "" {
			form["removeVideo"] = "true"
		}
		r.SetMultipartFormData(form)
		attach(r, "video", media.Video)
	})
	if err != nil {
		return content.Lesson{}, err
	}
	return decodeOne[content.Lesson]("lesson", body)
}

// DeleteLesson deletes a lesson.
func (c *Client) DeleteLesson(ctx context.Context, sess session.Session, lessonID string) error {
	path, err := entityPath("lesson", "/lessons/%s", lessonID)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, sess, "delete_lesson", resty.MethodDelete, path, nil)
	return err
}

type progressPayload struct {
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
}

// UpdateLessonProgress records the member's progress on a lesson.
func (c *Client) UpdateLessonProgress(ctx context.Context, sess session.Session, lessonID string, progress int, completed bool) error {
	path, err := entityPath("lesson", "/lessons/%s/progress", lessonID)
	if err != nil {
		return err
	}

	_, err = c.send(ctx, sess, "update_progress", resty.MethodPost, path, func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").
			SetBody(progressPayload{Progress: progress, Completed: completed})
	})
	return err
}

func lessonForm(fields content.LessonFields, media LessonMedia) map[string]string {
	form := map[string]string{
		"title":       strings.TrimSpace(fields.Title),
		"description": strings.TrimSpace(fields.Description),
	}
	if d := strings.TrimSpace(fields.Duration); d != "" {
		form["duration"] = d
	}
	if u := strings.TrimSpace(fields.MaterialURL); u != "" {
		form["materialUrl"] = u
	}
	if u := strings.TrimSpace(media.YouTubeURL); u != "" {
		form["youtubeUrl"] = u
	}
	return form
}
