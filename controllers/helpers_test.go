package controllers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierworks/garment-orders-api/config"
	"github.com/atelierworks/garment-orders-api/middleware"
	"github.com/atelierworks/garment-orders-api/models"
	"github.com/atelierworks/garment-orders-api/services"
)

func setupTestDB(t *testing.T, dst ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if len(dst) == 0 {
		dst = []interface{}{
			&models.User{},
			&models.Material{},
			&models.Order{},
			&models.Notification{},
			&models.StatusChange{},
		}
	}
	if err := db.AutoMigrate(dst...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupMockServices installs the design service and notifier mocks and
// returns them for assertions.
func setupMockServices(t *testing.T) (*services.MockDesignService, *services.MemoryNotifier) {
	t.Helper()

	designs := services.NewMockDesignService()
	designs.SetAsMockForTesting()

	notifier := services.NewMemoryNotifier()
	services.SetNotifier(notifier)

	return designs, notifier
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken middleware does.
func mockAuthMiddleware(auth0ID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", "mock-token")

		mockClaims := &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{
				Role: role,
			},
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

func createTestCustomer(t *testing.T, db *gorm.DB, auth0ID string) models.User {
	t.Helper()

	user := models.User{
		Auth0ID: auth0ID,
		Name:    "Customer User",
		Email:   fmt.Sprintf("%s@example.com", auth0ID),
		Role:    models.RoleCustomer,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create customer: %v", err)
	}
	return user
}

func createTestAdmin(t *testing.T, db *gorm.DB, auth0ID string) models.User {
	t.Helper()

	user := models.User{
		Auth0ID: auth0ID,
		Name:    "Admin User",
		Email:   fmt.Sprintf("%s@example.com", auth0ID),
		Role:    models.RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	return user
}

func createTestMaterial(t *testing.T, db *gorm.DB, name string, pricePerPiece int64) models.Material {
	t.Helper()

	material := models.Material{
		Name:          name,
		Description:   "Test material",
		PricePerPiece: pricePerPiece,
	}
	if err := db.Create(&material).Error; err != nil {
		t.Fatalf("Failed to create material: %v", err)
	}
	return material
}

// multipartRequest builds a multipart/form-data request with the given form
// fields and an optional file part.
func multipartRequest(t *testing.T, method, url string, fields map[string]string, fileField, filename string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write form field %s: %v", key, err)
		}
	}

	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write([]byte("fake image content")); err != nil {
			t.Fatalf("Failed to write file content: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
