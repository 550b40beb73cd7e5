package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// saveUpload reads the PDF upload from the named multipart field and writes
// it under the upload directory with a unique name. The caller is responsible
// for removing the returned file once processing finishes.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request, field string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return "", &ErrUploadTooLarge{Limit: s.maxUploadBytes}
		}
		return "", &ErrValidation{Field: field, Message: "invalid multipart form"}
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", &ErrValidation{Field: field, Message: "resume file is required"}
	}
	defer file.Close()

	// Only application/pdf is accepted; the filename suffix is consulted only
	// when the part carries no Content-Type at all.
	contentType := header.Header.Get("Content-Type")
	isPDF := contentType == "application/pdf" ||
		(contentType == "" && strings.HasSuffix(strings.ToLower(header.Filename), ".pdf"))
	if !isPDF {
		return "", &ErrUnsupportedFile{ContentType: contentType}
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.uploadDir, field+"-"+uuid.NewString()+".pdf")
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	return path, nil
}

// removeUpload deletes a processed upload. The maintenance sweep is the
// backstop for anything missed here.
func removeUpload(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to delete upload %s: %v", path, err)
	}
}
