package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"
)

// MockS3Service is a mock implementation of S3Service for testing
type MockS3Service struct {
	uploadedFiles map[string][]byte // map of S3 key to file content
	failKeys      map[string]bool   // file keys that should fail to upload
	mu            sync.RWMutex
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		uploadedFiles: make(map[string][]byte),
		failKeys:      make(map[string]bool),
	}
}

// SetAsMockForTesting sets this mock as the global S3 service instance for testing
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

// FailUploadsFor makes uploads of the given file key return an error.
func (m *MockS3Service) FailUploadsFor(fileKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failKeys[fileKey] = true
}

// UploadOrderFile simulates uploading an order file to S3
func (m *MockS3Service) UploadOrderFile(orderID, fileKey string, fileHeader *multipart.FileHeader) (string, error) {
	m.mu.RLock()
	shouldFail := m.failKeys[fileKey]
	m.mu.RUnlock()
	if shouldFail {
		return "", fmt.Errorf("simulated S3 failure for %s", fileKey)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	s3Key := fmt.Sprintf("orders/%s/%s%s", orderID, fileKey, ext)

	m.mu.Lock()
	m.uploadedFiles[s3Key] = content
	m.mu.Unlock()

	return s3Key, nil
}

// GetPresignedURL simulates generating a presigned URL
func (m *MockS3Service) GetPresignedURL(s3Key string) (string, error) {
	if s3Key == "" {
		return "", nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, exists := m.uploadedFiles[s3Key]; !exists {
		return "", fmt.Errorf("file not found: %s", s3Key)
	}
	return fmt.Sprintf("https://mock-s3.example.com/%s?signature=mock", s3Key), nil
}

// DeleteFile simulates deleting a file from S3
func (m *MockS3Service) DeleteFile(s3Key string) error {
	if s3Key == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploadedFiles, s3Key)
	return nil
}

// UploadedFile returns the stored content for an S3 key (test helper).
func (m *MockS3Service) UploadedFile(s3Key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.uploadedFiles[s3Key]
	return content, ok
}

// UploadCount returns the number of stored files (test helper).
func (m *MockS3Service) UploadCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.uploadedFiles)
}
