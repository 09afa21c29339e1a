package services

import (
	"errors"
	"net/http"
)

// Failure kinds. Callers test them with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrStorage       = errors.New("storage failure")
	ErrAnalysis      = errors.New("room analysis failed")
	ErrRendering     = errors.New("placement rendering failed")
	ErrInvalidUpload = errors.New("invalid upload")
	ErrUploadTooBig  = errors.New("upload too large")
	ErrBusy          = errors.New("visualizer busy")
)

// User-facing messages, returned verbatim.
const (
	MsgMissingFields = "Missing required fields: Name, Price, and Preview Image are mandatory."
	MsgStorageFull   = "Storage error: Device space may be full."
	MsgAnalysis      = "Spatial analysis failed. Please try again with a clearer photo."
	MsgNoImage       = "Neural rendering failed. Please try a clearer room photo."
	MsgRendering     = "AI failed to generate visual. Try a better lit room photo."
	MsgGLTF          = "Gltf files are multi-part. Please use a self-contained .glb file (Binary GLTF)."
	MsgNotGLB        = "Only .glb files are supported for mobile 3D preview."
	MsgModelTooBig   = "File is too massive! Please stay under 50MB for mobile performance."
	MsgImageTooBig   = "Image is too large. Max 10MB allowed."
	MsgNotImage      = "Only image files are supported for the preview."
	MsgBusy          = "The visualizer is busy. Please try again in a moment."
	MsgUnknownRole   = "Unknown role. Choose customer or vendor."
)

// Failure pairs a kind with the message shown to the user. The underlying
// cause, if any, is kept for logging.
type Failure struct {
	Kind    error
	Message string
	Cause   error
}

func fail(kind error, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Cause: cause}
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return f.Message + ": " + f.Cause.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() []error {
	if f.Cause != nil {
		return []error{f.Kind, f.Cause}
	}
	return []error{f.Kind}
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidUpload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUploadTooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrStorage):
		return http.StatusInsufficientStorage
	case errors.Is(err, ErrAnalysis), errors.Is(err, ErrRendering):
		return http.StatusBadGateway
	case errors.Is(err, ErrBusy):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// MessageOf returns the user-facing message carried by err.
func MessageOf(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	if errors.Is(err, ErrNotFound) {
		return "Resource not found"
	}
	return "Internal Server Error"
}
