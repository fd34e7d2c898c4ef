package workspace

import (
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/hierarchy"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/orchestrator"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/presentation"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/progress"
)

// moduleRequest is the module modal, sent as multipart when an image is attached.
type moduleRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	RemoveImage bool   `form:"removeImage" json:"removeImage"`
}

// lessonRequest is the lesson modal. The video travels as the "video" file part.
type lessonRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Duration    string `form:"duration" json:"duration"`
	MaterialURL string `form:"materialUrl" json:"materialUrl"`
	YouTubeURL  string `form:"youtubeUrl" json:"youtubeUrl"`
	RemoveVideo bool   `form:"removeVideo" json:"removeVideo"`
}

type progressRequest struct {
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
}

type selectionRequest struct {
	ModuleID string `json:"moduleId"`
	LessonID string `json:"lessonId"`
}

type postRequest struct {
	Title   string `form:"title" json:"title"`
	Content string `form:"content" json:"content"`
}

// View is everything the product screen renders.
type View struct {
	Product   presentation.ProductView                          `json:"product"`
	Modules   []presentation.ModuleView                         `json:"modules"`
	Posts     []presentation.PostView                           `json:"posts"`
	Groups    []content.PrivateGroup                            `json:"groups"`
	Selection hierarchy.Selection                               `json:"selection"`
	Summary   progress.Summary                                  `json:"summary"`
	Actions   map[orchestrator.Action]orchestrator.ActionStatus `json:"actions"`
}

// confirmationView is returned with 409 when a delete was not confirmed.
type confirmationView struct {
	Confirmation orchestrator.Confirmation `json:"confirmation"`
}
