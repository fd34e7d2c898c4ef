package content

import (
	"io"
	"strings"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/validation"
)

// Upload is a binary attachment picked in an authoring form.
type Upload struct {
	FileName string
	Reader   io.Reader
}

// ModuleFields are the metadata fields of a module authoring form.
type ModuleFields struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
}

// ModuleForm is the state of the module authoring modal.
type ModuleForm struct {
	EditingID string
	ModuleFields
	Image       *Upload
	RemoveImage bool
}

// ModuleFormFrom pre-populates a form for editing m.
func ModuleFormFrom(m Module) ModuleForm {
	return ModuleForm{
		EditingID: m.ID,
		ModuleFields: ModuleFields{
			Title:       m.Title,
			Description: m.Description,
		},
	}
}

// Editing reports whether the form edits an existing module.
func (f *ModuleForm) Editing() bool { return f.EditingID != "" }

// Validate runs the local checks that must pass before any network call.
func (f *ModuleForm) Validate() error {
	fields, err := validation.Struct(f.ModuleFields)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return apperrors.Validation(ErrRequiredFields.Error(), fields)
	}
	return nil
}

// Reset clears the form after a successful submission.
func (f *ModuleForm) Reset() { *f = ModuleForm{} }

// LessonFields are the metadata fields of a lesson authoring form.
type LessonFields struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Duration    string `json:"duration"`
	MaterialURL string `json:"materialUrl" validate:"omitempty,url"`
}

// LessonForm is the state of the lesson authoring modal.
// The video file and the YouTube link are mutually exclusive: the last one set wins.
type LessonForm struct {
	EditingID string
	ModuleID  string
	LessonFields
	RemoveVideo bool

	video      *Upload
	youtubeURL string
}

// LessonFormFrom pre-populates a form for editing l.
func LessonFormFrom(l Lesson) LessonForm {
	return LessonForm{
		EditingID: l.ID,
		ModuleID:  l.ModuleID,
		LessonFields: LessonFields{
			Title:       l.Title,
			Description: l.Description,
			Duration:    l.Duration,
			MaterialURL: l.MaterialURL,
		},
	}
}

// SetVideoFile selects an uploaded video and clears any YouTube link.
func (f *LessonForm) SetVideoFile(u *Upload) {
	f.video = u
	if u != nil {
		f.youtubeURL = ""
		f.RemoveVideo = false
	}
}

// SetYouTubeURL selects a YouTube link and clears any uploaded video.
func (f *LessonForm) SetYouTubeURL(raw string) {
	f.youtubeURL = strings.TrimSpace(raw)
	if f.youtubeURL != "" {
		f.video = nil
		f.RemoveVideo = false
	}
}

// VideoFile returns the selected upload, if any.
func (f *LessonForm) VideoFile() *Upload { return f.video }

// YouTubeURL returns the selected YouTube link, if any.
func (f *LessonForm) YouTubeURL() string { return f.youtubeURL }

// HasMedia reports whether either media source is selected.
func (f *LessonForm) HasMedia() bool { return f.video != nil || f.youtubeURL != "" }

// Editing reports whether the form edits an existing lesson.
func (f *LessonForm) Editing() bool { return f.EditingID != "" }

// Validate runs the local checks that must pass before any network call.
// New lessons need a video file or a YouTube link; edits keep the current video.
func (f *LessonForm) Validate() error {
	fields, err := validation.Struct(f.LessonFields)
	if err != nil {
		return err
	}
	if !f.Editing() && !f.HasMedia() {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["video"] = "a video file or YouTube link is required"
	}
	if len(fields) > 0 {
		return apperrors.Validation(ErrRequiredFields.Error(), fields)
	}
	return nil
}

// Reset clears the form after a successful submission.
func (f *LessonForm) Reset() { *f = LessonForm{} }

// PostForm is the state of the community post modal.
type PostForm struct {
	Title   string  `json:"title" validate:"notblank"`
	Content string  `json:"content" validate:"notblank"`
	Image   *Upload `json:"-"`
}

// Validate runs the local checks that must pass before any network call.
func (f *PostForm) Validate() error {
	return validateFields(f)
}

// PrivateGroupForm is the state of the private group modal.
type PrivateGroupForm struct {
	Name        string        `json:"name" validate:"notblank"`
	Platform    GroupPlatform `json:"platform" validate:"oneof=WHATSAPP TELEGRAM DISCORD OTHER"`
	InviteURL   string        `json:"inviteUrl" validate:"required,url"`
	Description string        `json:"description"`
}

// Validate runs the local checks that must pass before any network call.
func (f *PrivateGroupForm) Validate() error {
	return validateFields(f)
}

func validateFields(v interface{}) error {
	fields, err := validation.Struct(v)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return apperrors.Validation(ErrRequiredFields.Error(), fields)
	}
	return nil
}
