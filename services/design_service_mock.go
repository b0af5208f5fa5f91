package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"sync"

	"github.com/atelierworks/garment-orders-api/utils"
)

// MockDesignService is a mock implementation of DesignService for testing
type MockDesignService struct {
	uploadedImages map[string][]byte // map of image key to file content
	deletedKeys    []string
	mu             sync.RWMutex
	failUploads    bool
}

// NewMockDesignService creates a new mock design service
func NewMockDesignService() *MockDesignService {
	return &MockDesignService{
		uploadedImages: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global design service instance for testing
func (m *MockDesignService) SetAsMockForTesting() {
	SetDesignService(m)
}

// FailUploads makes subsequent uploads return an error (for testing)
func (m *MockDesignService) FailUploads(fail bool) {
	m.mu.Lock()
	m.failUploads = fail
	m.mu.Unlock()
}

// UploadDesign simulates uploading a design image
func (m *MockDesignService) UploadDesign(fileHeader *multipart.FileHeader) (string, error) {
	return m.upload(fileHeader, DesignKeyPrefix)
}

// UploadMaterialImage simulates uploading a material image
func (m *MockDesignService) UploadMaterialImage(fileHeader *multipart.FileHeader) (string, error) {
	return m.upload(fileHeader, MaterialKeyPrefix)
}

func (m *MockDesignService) upload(fileHeader *multipart.FileHeader, prefix string) (string, error) {
	// Validate like the real service so tests exercise the same rules
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failUploads {
		return "", fmt.Errorf("mock upload failure")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content := make([]byte, fileHeader.Size)
	if _, err := file.Read(content); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	imageKey := fmt.Sprintf("%s/mock_%s", prefix, filepath.Base(fileHeader.Filename))
	m.uploadedImages[imageKey] = content
	return imageKey, nil
}

// ImageURL simulates generating a presigned URL
func (m *MockDesignService) ImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.uploadedImages[imageKey]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("image not found in mock storage: %s", imageKey)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", imageKey), nil
}

// DeleteImage simulates deleting an image and records the key
func (m *MockDesignService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.uploadedImages, imageKey)
	m.deletedKeys = append(m.deletedKeys, imageKey)
	m.mu.Unlock()

	return nil
}

// ImageExists checks if an image exists in mock storage
func (m *MockDesignService) ImageExists(imageKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedImages[imageKey]
	return exists
}

// DeletedKeys returns every key passed to DeleteImage (for testing assertions)
func (m *MockDesignService) DeletedKeys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, len(m.deletedKeys))
	copy(keys, m.deletedKeys)
	return keys
}

// Clear resets the mock storage
func (m *MockDesignService) Clear() {
	m.mu.Lock()
	m.uploadedImages = make(map[string][]byte)
	m.deletedKeys = nil
	m.mu.Unlock()
}
