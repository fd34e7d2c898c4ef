package request

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/response"
)

// Handler returns a middleware that standardises error responses across handlers.
// Handlers report failures with c.Error and return without writing.
func Handler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := errors.Join(errorsFromContext(c.Errors)...)
		if err == nil {
			return
		}

		if appErr, ok := apperrors.As(err); ok {
			if logger != nil && appErr.StatusCode() >= http.StatusInternalServerError {
				logger.ErrorContext(c.Request.Context(), appErr.Message(),
					slog.Int("status", appErr.StatusCode()),
					slog.String("code", string(appErr.Code())),
					slog.String("error", err.Error()))
			}
			response.Error(c, appErr.StatusCode(), appErr.Message(), errorBody(appErr))
			return
		}

		status, message := classify(err)
		response.ErrorWithLog(logger, c, status, message, err)
	}
}

func errorsFromContext(errs []*gin.Error) []error {
	list := make([]error, 0, len(errs))
	for _, item := range errs {
		if item != nil && item.Err != nil {
			list = append(list, item.Err)
		}
	}
	return list
}

func errorBody(appErr *apperrors.AppError) gin.H {
	body := gin.H{"code": appErr.Code()}
	if fields := appErr.Fields(); len(fields) > 0 {
		body["fields"] = fields
	}
	return body
}

func classify(err error) (int, string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout, "the request was cancelled"
	}
	return http.StatusInternalServerError, "Internal server error"
}
