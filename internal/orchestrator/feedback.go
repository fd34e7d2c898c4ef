package orchestrator

import (
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
)

// Surface is where a failure is shown to the user.
type Surface string

const (
	SurfaceInline Surface = "inline"
	SurfaceBanner Surface = "banner"
	SurfaceAlert  Surface = "alert"
)

// Flow classifies an action for feedback purposes.
type Flow string

const (
	FlowAuthoring   Flow = "authoring"
	FlowDestructive Flow = "destructive"
)

// Feedback is a user-facing rendering of a failed action.
type Feedback struct {
	Surface Surface             `json:"surface"`
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
	Fields  map[string]string   `json:"fields,omitempty"`
}

// FeedbackFor decides how err is shown. Validation failures stay on the form;
// everything else is a banner while authoring and an alert for destructive actions.
func FeedbackFor(err error, flow Flow) Feedback {
	if err == nil {
		return Feedback{}
	}

	appErr, ok := apperrors.As(err)
	if !ok {
		return Feedback{Surface: surfaceFor(flow), Code: apperrors.ErrInternal, Message: apperrors.DefaultHTTPMessage}
	}

	fb := Feedback{Code: appErr.Code(), Message: appErr.Message()}
	if appErr.Code() == apperrors.ErrValidation {
		fb.Surface = SurfaceInline
		fb.Fields = appErr.Fields()
		return fb
	}
	fb.Surface = surfaceFor(flow)
	return fb
}

func surfaceFor(flow Flow) Surface {
	if flow == FlowDestructive {
		return SurfaceAlert
	}
	return SurfaceBanner
}
