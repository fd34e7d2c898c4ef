package content

import "errors"

var (
	ErrRequiredFields  = errors.New("please fill in all required fields")
	ErrModuleNotFound  = errors.New("module not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrProductNotFound = errors.New("product not found")
)
