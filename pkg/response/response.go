package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
)

// Envelope is the JSON shape of every console response.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      interface{} `json:"error,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// Success writes a success response with optional message, data and page metadata.
func Success(c *gin.Context, status int, data interface{}, message string, pagination interface{}) {
	c.JSON(status, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message, nil)
}

// Error writes an error response. body is rendered as-is under "error".
func Error(c *gin.Context, status int, message string, body interface{}) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Error:   body,
	})
}

// ErrorWithLog logs err and writes an error response carrying only its code,
// so internal detail never reaches the client.
func ErrorWithLog(logger *slog.Logger, c *gin.Context, status int, message string, err error) {
	if logger != nil && err != nil {
		logger.ErrorContext(c.Request.Context(), message, slog.Int("status", status), slog.String("error", err.Error()))
	}

	Error(c, status, message, gin.H{"code": codeOf(err)})
}

// ErrorWithData writes an error response that also carries a data payload,
// such as the prompt a client must confirm before retrying.
func ErrorWithData(c *gin.Context, status int, message string, data interface{}, code string) {
	c.JSON(status, Envelope{
		Success: false,
		Message: message,
		Data:    data,
		Error:   gin.H{"code": code},
	})
}

func codeOf(err error) apperrors.ErrorCode {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Code()
	}
	return apperrors.ErrInternal
}
