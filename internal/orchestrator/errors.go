package orchestrator

import (
	"errors"
	"net/http"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
)

var (
	ErrProgressInFlight = errors.New("a progress update for this lesson is already being saved")
	ErrReadOnlyRole     = errors.New("members cannot change course content")
	ErrPostNotFound     = errors.New("post not found")
	ErrGroupNotFound    = errors.New("private group not found")
)

func inFlight() error {
	return apperrors.New(ErrProgressInFlight.Error(), http.StatusConflict, apperrors.ErrConflict, ErrProgressInFlight)
}

func notFound(err error) error {
	return apperrors.NotFound(err)
}

func moduleNotFound() error { return notFound(content.ErrModuleNotFound) }

func lessonNotFound() error { return notFound(content.ErrLessonNotFound) }
