package workspace

import "errors"

var (
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrInvalidPayload       = errors.New("invalid request payload")
	ErrUnreadableUpload     = errors.New("uploaded file could not be read")
)
