package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
)

// AllowedImageFormats are the accepted photo upload extensions.
var AllowedImageFormats = []string{".jpg", ".jpeg", ".png", ".webp"}

// fileKeyPattern matches the derived upload keys: photo_face, photo_body,
// photo_face_2..n and outfit_upload_1..n.
var fileKeyPattern = regexp.MustCompile(`^(photo_face|photo_body)(_[0-9]+)?$|^outfit_upload_[0-9]+$`)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	// Check file size
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	// Check file extension
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	for _, allowed := range AllowedImageFormats {
		if ext == allowed {
			return nil
		}
	}

	return &FileUploadError{
		Code:    "INVALID_FILE_FORMAT",
		Message: fmt.Sprintf("Only %s files are allowed", strings.Join(AllowedImageFormats, ", ")),
	}
}

// ValidFileKey reports whether a client-supplied file key matches the
// derived key grammar. Anything else is rejected before it reaches
// storage paths.
func ValidFileKey(key string) bool {
	return fileKeyPattern.MatchString(key)
}
