package services

import (
	"fmt"
	"mime/multipart"

	"github.com/atelierworks/garment-orders-api/utils"
)

// S3 key prefixes for the two kinds of images the API stores.
const (
	DesignKeyPrefix   = "designs"
	MaterialKeyPrefix = "materials"
)

// DesignService handles customer design artwork and material catalog
// images: validation, upload, presigned access and deletion. Deletion is
// also the compensating action when an order insert fails after its design
// already reached storage.
type DesignService interface {
	// UploadDesign validates and uploads a customer design, returns the storage key
	UploadDesign(fileHeader *multipart.FileHeader) (string, error)

	// UploadMaterialImage validates and uploads a material catalog image
	UploadMaterialImage(fileHeader *multipart.FileHeader) (string, error)

	// ImageURL generates a URL for accessing an uploaded image
	ImageURL(imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(imageKey string) error
}

// S3DesignService implements DesignService using AWS S3 for storage
type S3DesignService struct {
	s3Service S3Interface
}

var designServiceInstance DesignService

// InitDesignService initializes the design service with S3 backend
func InitDesignService(s3Service S3Interface) DesignService {
	designServiceInstance = &S3DesignService{
		s3Service: s3Service,
	}
	return designServiceInstance
}

// GetDesignService returns the initialized design service instance
func GetDesignService() DesignService {
	return designServiceInstance
}

// SetDesignService sets the design service instance (primarily for testing)
func SetDesignService(service DesignService) {
	designServiceInstance = service
}

// UploadDesign validates and uploads a design image to S3
func (s *S3DesignService) UploadDesign(fileHeader *multipart.FileHeader) (string, error) {
	return s.upload(fileHeader, DesignKeyPrefix)
}

// UploadMaterialImage validates and uploads a material image to S3
func (s *S3DesignService) UploadMaterialImage(fileHeader *multipart.FileHeader) (string, error) {
	return s.upload(fileHeader, MaterialKeyPrefix)
}

func (s *S3DesignService) upload(fileHeader *multipart.FileHeader, prefix string) (string, error) {
	// Validate the image file
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	s3Key, err := s.s3Service.UploadFile(fileHeader, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return s3Key, nil
}

// ImageURL generates a presigned URL for accessing an image
func (s *S3DesignService) ImageURL(imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}

	return url, nil
}

// DeleteImage deletes an image from S3
func (s *S3DesignService) DeleteImage(imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
