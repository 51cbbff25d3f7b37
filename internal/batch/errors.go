package batch

import (
	"errors"
	"fmt"
)

// ValidationError is a precondition failure detected before any remote call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Field, e.Message)
}

var (
	ErrMissingImage   = &ValidationError{Field: "image", Message: "Please upload an image first."}
	ErrMissingAPIKey  = &ValidationError{Field: "api_key", Message: "API Key is not configured. Please set the GEMINI_API_KEY environment variable."}
	ErrNoPoseSelected = &ValidationError{Field: "poses", Message: "Please select at least one pose to generate images."}
	ErrInvalidCount   = &ValidationError{Field: "count", Message: "Please choose how many images to generate."}
)

// RemoteError is the failure of one generation request. It never leaves the
// batch; it is logged and the slot is dropped.
type RemoteError struct {
	PoseID     string
	QueueIndex int
	Err        error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("generate %s-%d: %v", e.PoseID, e.QueueIndex, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

var ErrEmptyResult = errors.New("no images were generated")

// EmptyResultError reports a batch that settled without a single image.
type EmptyResultError struct {
	Requested int
	Failed    int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%v: %d requested, %d failed", ErrEmptyResult, e.Requested, e.Failed)
}

func (e *EmptyResultError) Is(target error) bool {
	return target == ErrEmptyResult
}

const (
	msgEmpty   = "The AI did not return any images. Please try a different combination of options."
	msgGeneric = "An error occurred while generating the image. Please try again later."
)

// UserMessage maps an error from Generate to the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, ErrEmptyResult) {
		return msgEmpty
	}
	return msgGeneric
}
