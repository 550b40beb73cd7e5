// Package pdftext extracts plain text from uploaded PDF resumes.
package pdftext

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractError indicates a PDF could not be read or contained no text.
type ExtractError struct {
	Path  string
	Cause error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Path, e.Cause)
}

func (e *ExtractError) Unwrap() error { return e.Cause }

// Extract reads the PDF at path and returns its plain text with whitespace
// collapsed. Encrypted, malformed, or text-free PDFs yield an *ExtractError.
func Extract(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", &ExtractError{Path: path, Cause: err}
	}
	defer file.Close()

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", &ExtractError{Path: path, Cause: err}
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, plainText); err != nil {
		return "", &ExtractError{Path: path, Cause: err}
	}

	text := strings.Join(strings.Fields(builder.String()), " ")
	if text == "" {
		return "", &ExtractError{Path: path, Cause: fmt.Errorf("no text content")}
	}
	return text, nil
}
