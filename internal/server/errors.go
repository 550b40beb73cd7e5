package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-matcher/internal/matching"
	"github.com/jonathan/resume-matcher/internal/pdftext"
	"github.com/jonathan/resume-matcher/internal/ratelimit"
	"github.com/jonathan/resume-matcher/internal/suggest"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUploadTooLarge indicates the uploaded file exceeded the size cap
type ErrUploadTooLarge struct {
	Limit int64
}

func (e *ErrUploadTooLarge) Error() string {
	return fmt.Sprintf("file too large: size should not exceed %d bytes", e.Limit)
}

// ErrUnsupportedFile indicates the upload was not a PDF
type ErrUnsupportedFile struct {
	ContentType string
}

func (e *ErrUnsupportedFile) Error() string {
	return fmt.Sprintf("only PDF files are allowed, got %s", e.ContentType)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		tooLarge    *ErrUploadTooLarge
		unsupported *ErrUnsupportedFile
		badInput    *matching.InvalidInputError
		limited     *ratelimit.LimitError
		extract     *pdftext.ExtractError
		generation  *suggest.GenerationError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &tooLarge),
		errors.As(err, &unsupported), errors.As(err, &badInput):
		return http.StatusBadRequest
	case errors.As(err, &limited):
		return http.StatusTooManyRequests
	case errors.As(err, &extract), errors.As(err, &generation):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
