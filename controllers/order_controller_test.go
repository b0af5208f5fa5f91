package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atelierworks/garment-orders-api/models"
	"github.com/atelierworks/garment-orders-api/services"
)

func seedTestOrder(t *testing.T, db *gorm.DB, customer models.User, material models.Material, status models.OrderStatus) models.Order {
	t.Helper()

	order := models.Order{
		CustomerID:   customer.ID,
		MaterialID:   material.ID,
		MaterialName: material.Name,
		UnitPrice:    material.PricePerPiece,
		Quantity:     48,
		Placement:    "Centered on the chest, 20cm wide",
		DesignS3Key:  "designs/mock_design.png",
		TotalAmount:  48 * material.PricePerPiece,
		UniqueCode:   123,
		Status:       status,
		Paid:         status != models.StatusAwaitingPayment,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return order
}

func TestEstimateOrder(t *testing.T) {
	db := setupTestDB(t)
	setupMockServices(t)

	customer := createTestCustomer(t, db, "auth0|customer123")
	material := createTestMaterial(t, db, "Cotton Twill", 5000)

	tests := []struct {
		name           string
		auth0ID        string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:    "Successfully estimate an order",
			auth0ID: customer.Auth0ID,
			requestBody: map[string]interface{}{
				"material_id": material.ID,
				"quantity":    48,
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, float64(48), data["quantity"])
				assert.Equal(t, float64(48*5000), data["total_amount"])
				assert.Equal(t, float64(7), data["estimated_completion_days"])
				assert.Equal(t, "Cotton Twill", data["material_name"])
			},
		},
		{
			name:    "Fail with quantity below minimum",
			auth0ID: customer.Auth0ID,
			requestBody: map[string]interface{}{
				"material_id": material.ID,
				"quantity":    10,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_QUANTITY",
		},
		{
			name:    "Fail with quantity above maximum",
			auth0ID: customer.Auth0ID,
			requestBody: map[string]interface{}{
				"material_id": material.ID,
				"quantity":    1001,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_QUANTITY",
		},
		{
			name:    "Fail with missing quantity",
			auth0ID: customer.Auth0ID,
			requestBody: map[string]interface{}{
				"material_id": material.ID,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:    "Fail with unknown material",
			auth0ID: customer.Auth0ID,
			requestBody: map[string]interface{}{
				"material_id": 9999,
				"quantity":    48,
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "MATERIAL_NOT_FOUND",
		},
		{
			name:    "Fail with user not found",
			auth0ID: "auth0|nonexistent",
			requestBody: map[string]interface{}{
				"material_id": material.ID,
				"quantity":    48,
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "USER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/orders/estimate",
				mockAuthMiddleware(tt.auth0ID, models.RoleCustomer),
				EstimateOrder,
			)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost, "/orders/estimate", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}

			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestEstimateOrder_ReflectsWorkload(t *testing.T) {
	db := setupTestDB(t)
	setupMockServices(t)

	customer := createTestCustomer(t, db, "auth0|busy")
	material := createTestMaterial(t, db, "Heavy Canvas", 8000)

	// Six orders already in production leave one free production slot, so
	// a 48-piece order (two units) spills into a second cycle.
	for i := 0; i < 6; i++ {
		seedTestOrder(t, db, customer, material, models.StatusInProduction)
	}

	router := setupTestRouter()
	router.POST("/orders/estimate",
		mockAuthMiddleware(customer.Auth0ID, models.RoleCustomer),
		EstimateOrder,
	)

	body, _ := json.Marshal(map[string]interface{}{
		"material_id": material.ID,
		"quantity":    48,
	})
	req, _ := http.NewRequest(http.MethodPost, "/orders/estimate", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(14), data["estimated_completion_days"])
}

func TestCreateOrder(t *testing.T) {
	db := setupTestDB(t)
	designs, notifier := setupMockServices(t)

	customer := createTestCustomer(t, db, "auth0|customer123")
	admin := createTestAdmin(t, db, "auth0|admin123")
	_ = createTestMaterial(t, db, "Cotton Twill", 5000)

	validFields := func() map[string]string {
		return map[string]string{
			"material_id": "1",
			"quantity":    "48",
			"placement":   "Centered on the chest, 20cm wide",
		}
	}

	tests := []struct {
		name           string
		auth0ID        string
		role           string
		fields         map[string]string
		filename       string
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "Successfully create order as customer",
			auth0ID:        customer.Auth0ID,
			role:           models.RoleCustomer,
			fields:         validFields(),
			filename:       "design.png",
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.True(t, response["success"].(bool))
				data := response["data"].(map[string]interface{})
				assert.Equal(t, float64(customer.ID), data["customer_id"])
				assert.Equal(t, "Cotton Twill", data["material_name"])
				assert.Equal(t, float64(5000), data["unit_price"])
				assert.Equal(t, float64(48), data["quantity"])
				assert.Equal(t, float64(48*5000), data["total_amount"])
				assert.Equal(t, "awaiting_payment", data["status"])
				assert.Equal(t, false, data["paid"])
				assert.Equal(t, float64(7), data["estimated_completion_days"])
				assert.Equal(t, "designs/mock_design.png", data["design_s3_key"])
				assert.True(t, designs.ImageExists("designs/mock_design.png"))

				code := data["unique_code"].(float64)
				assert.GreaterOrEqual(t, code, float64(100))
				assert.LessOrEqual(t, code, float64(999))
				assert.Equal(t, data["total_amount"].(float64)+code, data["transfer_amount"].(float64))

				// Customer relationship is loaded
				customerData := data["customer"].(map[string]interface{})
				assert.Equal(t, customer.Email, customerData["email"])

				// A creation event went out on the change feed
				published := notifier.Published()
				require.Len(t, published, 1)
				assert.Equal(t, services.ChangeCreated, published[0].Kind)
				assert.Equal(t, customer.ID, published[0].CustomerID)
			},
		},
		{
			name:           "Fail to create order as admin",
			auth0ID:        admin.Auth0ID,
			role:           models.RoleAdmin,
			fields:         validFields(),
			filename:       "design.png",
			expectedStatus: http.StatusForbidden,
			expectedError:  "FORBIDDEN",
		},
		{
			name:    "Fail with quantity below minimum",
			auth0ID: customer.Auth0ID,
			role:    models.RoleCustomer,
			fields: map[string]string{
				"material_id": "1",
				"quantity":    "10",
				"placement":   "Centered on the chest, 20cm wide",
			},
			filename:       "design.png",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_QUANTITY",
		},
		{
			name:    "Fail with non-numeric quantity",
			auth0ID: customer.Auth0ID,
			role:    models.RoleCustomer,
			fields: map[string]string{
				"material_id": "1",
				"quantity":    "lots",
				"placement":   "Centered on the chest, 20cm wide",
			},
			filename:       "design.png",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:    "Fail with placement too short",
			auth0ID: customer.Auth0ID,
			role:    models.RoleCustomer,
			fields: map[string]string{
				"material_id": "1",
				"quantity":    "48",
				"placement":   "chest",
			},
			filename:       "design.png",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_PLACEMENT",
		},
		{
			name:    "Fail with unknown material",
			auth0ID: customer.Auth0ID,
			role:    models.RoleCustomer,
			fields: map[string]string{
				"material_id": "9999",
				"quantity":    "48",
				"placement":   "Centered on the chest, 20cm wide",
			},
			filename:       "design.png",
			expectedStatus: http.StatusNotFound,
			expectedError:  "MATERIAL_NOT_FOUND",
		},
		{
			name:           "Fail with missing design file",
			auth0ID:        customer.Auth0ID,
			role:           models.RoleCustomer,
			fields:         validFields(),
			filename:       "",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "MISSING_DESIGN",
		},
		{
			name:           "Fail with unsupported file format",
			auth0ID:        customer.Auth0ID,
			role:           models.RoleCustomer,
			fields:         validFields(),
			filename:       "design.gif",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_FILE_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			designs.Clear()
			notifier.Clear()

			router := setupTestRouter()
			router.POST("/orders",
				mockAuthMiddleware(tt.auth0ID, tt.role),
				CreateOrder,
			)

			fileField := "design"
			if tt.filename == "" {
				fileField = ""
			}
			req := multipartRequest(t, http.MethodPost, "/orders", tt.fields, fileField, tt.filename)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			assert.NoError(t, err)

			if tt.expectedError != "" {
				assert.False(t, response["success"].(bool))
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}

			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestCreateOrder_CompensatesFailedInsert(t *testing.T) {
	db := setupTestDB(t)
	designs, notifier := setupMockServices(t)

	customer := createTestCustomer(t, db, "auth0|customer123")
	createTestMaterial(t, db, "Cotton Twill", 5000)

	// Block order inserts so the handler hits its cleanup path after the
	// design has already been uploaded.
	require.NoError(t, db.Exec(
		"CREATE TRIGGER block_order_inserts BEFORE INSERT ON orders BEGIN SELECT RAISE(ABORT, 'insert blocked'); END",
	).Error)

	router := setupTestRouter()
	router.POST("/orders",
		mockAuthMiddleware(customer.Auth0ID, models.RoleCustomer),
		CreateOrder,
	)

	req := multipartRequest(t, http.MethodPost, "/orders", map[string]string{
		"material_id": "1",
		"quantity":    "48",
		"placement":   "Centered on the chest, 20cm wide",
	}, "design", "design.png")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "DATABASE_ERROR", errorData["code"])

	// The uploaded design was removed again
	assert.False(t, designs.ImageExists("designs/mock_design.png"))
	assert.Contains(t, designs.DeletedKeys(), "designs/mock_design.png")
	assert.Empty(t, notifier.Published())
}

func TestListOrders(t *testing.T) {
	db := setupTestDB(t)
	setupMockServices(t)

	customerA := createTestCustomer(t, db, "auth0|customerA")
	customerB := createTestCustomer(t, db, "auth0|customerB")
	admin := createTestAdmin(t, db, "auth0|admin123")
	material := createTestMaterial(t, db, "Cotton Twill", 5000)

	seedTestOrder(t, db, customerA, material, models.StatusAwaitingPayment)
	seedTestOrder(t, db, customerA, material, models.StatusInProduction)
	seedTestOrder(t, db, customerB, material, models.StatusProcessing)

	archived := seedTestOrder(t, db, customerB, material, models.StatusCompleted)
	require.NoError(t, db.Model(&archived).Update("archived", true).Error)

	tests := []struct {
		name          string
		auth0ID       string
		role          string
		query         string
		expectedCount int
	}{
		{
			name:          "Customer sees only their own orders",
			auth0ID:       customerA.Auth0ID,
			role:          models.RoleCustomer,
			expectedCount: 2,
		},
		{
			name:          "Admin sees all active orders by default",
			auth0ID:       admin.Auth0ID,
			role:          models.RoleAdmin,
			expectedCount: 3,
		},
		{
			name:          "Admin sees archived orders when requested",
			auth0ID:       admin.Auth0ID,
			role:          models.RoleAdmin,
			query:         "?include_archived=true",
			expectedCount: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/orders",
				mockAuthMiddleware(tt.auth0ID, tt.role),
				ListOrders,
			)

			req, _ := http.NewRequest(http.MethodGet, "/orders"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.True(t, response["success"].(bool))
			data := response["data"].([]interface{})
			assert.Len(t, data, tt.expectedCount)
		})
	}
}

func TestGetOrder(t *testing.T) {
	db := setupTestDB(t)
	setupMockServices(t)

	owner := createTestCustomer(t, db, "auth0|owner")
	other := createTestCustomer(t, db, "auth0|other")
	admin := createTestAdmin(t, db, "auth0|admin123")
	material := createTestMaterial(t, db, "Cotton Twill", 5000)

	order := seedTestOrder(t, db, owner, material, models.StatusAwaitingPayment)

	tests := []struct {
		name           string
		auth0ID        string
		role           string
		orderID        string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Owner can fetch their order",
			auth0ID:        owner.Auth0ID,
			role:           models.RoleCustomer,
			orderID:        "1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Another customer is rejected",
			auth0ID:        other.Auth0ID,
			role:           models.RoleCustomer,
			orderID:        "1",
			expectedStatus: http.StatusForbidden,
			expectedError:  "FORBIDDEN",
		},
		{
			name:           "Admin can fetch any order",
			auth0ID:        admin.Auth0ID,
			role:           models.RoleAdmin,
			orderID:        "1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown order returns not found",
			auth0ID:        owner.Auth0ID,
			role:           models.RoleCustomer,
			orderID:        "9999",
			expectedStatus: http.StatusNotFound,
			expectedError:  "ORDER_NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/orders/:id",
				mockAuthMiddleware(tt.auth0ID, tt.role),
				GetOrder,
			)

			req, _ := http.NewRequest(http.MethodGet, "/orders/"+tt.orderID, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
				return
			}

			data := response["data"].(map[string]interface{})
			assert.Equal(t, float64(order.ID), data["id"])
			assert.Equal(t, order.TotalAmount+int64(order.UniqueCode), int64(data["transfer_amount"].(float64)))
		})
	}
}

func TestPayOrder(t *testing.T) {
	db := setupTestDB(t)
	setupMockServices(t)

	owner := createTestCustomer(t, db, "auth0|owner")
	other := createTestCustomer(t, db, "auth0|other")
	material := createTestMaterial(t, db, "Cotton Twill", 5000)

	order := seedTestOrder(t, db, owner, material, models.StatusAwaitingPayment)

	payRoute := func(auth0ID string) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.POST("/orders/:id/pay",
			mockAuthMiddleware(auth0ID, models.RoleCustomer),
			PayOrder,
		)
		req, _ := http.NewRequest(http.MethodPost, "/orders/1/pay", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Another customer cannot pay", func(t *testing.T) {
		w := payRoute(other.Auth0ID)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Owner confirms payment", func(t *testing.T) {
		w := payRoute(owner.Auth0ID)
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "processing", data["status"])
		assert.Equal(t, true, data["paid"])
		assert.Equal(t, false, response["already_paid"])

		var audits int64
		db.Model(&models.StatusChange{}).Where("order_id = ?", order.ID).Count(&audits)
		assert.Equal(t, int64(1), audits)
	})

	t.Run("Paying again is a no-op", func(t *testing.T) {
		w := payRoute(owner.Auth0ID)
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["already_paid"])

		var audits int64
		db.Model(&models.StatusChange{}).Where("order_id = ?", order.ID).Count(&audits)
		assert.Equal(t, int64(1), audits)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	db := setupTestDB(t)
	setupMockServices(t)

	customer := createTestCustomer(t, db, "auth0|customer123")
	admin := createTestAdmin(t, db, "auth0|admin123")
	material := createTestMaterial(t, db, "Cotton Twill", 5000)

	patchStatus := func(auth0ID, role, orderID, status string) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.PATCH("/orders/:id/status",
			mockAuthMiddleware(auth0ID, role),
			UpdateOrderStatus,
		)
		body, _ := json.Marshal(map[string]string{"status": status})
		req, _ := http.NewRequest(http.MethodPatch, "/orders/"+orderID+"/status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Customer cannot change status", func(t *testing.T) {
		seedTestOrder(t, db, customer, material, models.StatusAwaitingPayment)
		w := patchStatus(customer.Auth0ID, models.RoleCustomer, "1", "processing")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin advances through the pipeline", func(t *testing.T) {
		w := patchStatus(admin.Auth0ID, models.RoleAdmin, "1", "processing")
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "processing", data["status"])
		assert.Equal(t, true, data["paid"])
		assert.Equal(t, false, response["override"])
	})

	t.Run("Entering production attaches an estimate", func(t *testing.T) {
		w := patchStatus(admin.Auth0ID, models.RoleAdmin, "1", "in_production")
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "in_production", data["status"])
		assert.Equal(t, float64(7), data["estimated_completion_days"])
	})

	t.Run("Backward move is applied as an override", func(t *testing.T) {
		w := patchStatus(admin.Auth0ID, models.RoleAdmin, "1", "awaiting_payment")
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "awaiting_payment", data["status"])
		assert.Equal(t, false, data["paid"])
		assert.Equal(t, true, response["override"])

		var audit models.StatusChange
		require.NoError(t, db.Where("order_id = ? AND override = ?", 1, true).First(&audit).Error)
		assert.Equal(t, models.StatusInProduction, audit.FromStatus)
		assert.Equal(t, models.StatusAwaitingPayment, audit.ToStatus)
		assert.Equal(t, admin.ID, audit.ActorID)
	})

	t.Run("Unknown status is rejected", func(t *testing.T) {
		w := patchStatus(admin.Auth0ID, models.RoleAdmin, "1", "shipped")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		errorData := response["error"].(map[string]interface{})
		assert.Equal(t, "INVALID_STATUS", errorData["code"])
	})

	t.Run("Requesting the current status is a no-op", func(t *testing.T) {
		w := patchStatus(admin.Auth0ID, models.RoleAdmin, "1", "awaiting_payment")
		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, false, response["changed"])
	})
}

func TestArchiveOrder(t *testing.T) {
	db := setupTestDB(t)
	setupMockServices(t)

	customer := createTestCustomer(t, db, "auth0|customer123")
	admin := createTestAdmin(t, db, "auth0|admin123")
	material := createTestMaterial(t, db, "Cotton Twill", 5000)

	order := seedTestOrder(t, db, customer, material, models.StatusCompleted)

	archive := func(auth0ID, role string, body []byte) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.POST("/orders/:id/archive",
			mockAuthMiddleware(auth0ID, role),
			ArchiveOrder,
		)
		req, _ := http.NewRequest(http.MethodPost, "/orders/1/archive", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Customer cannot archive", func(t *testing.T) {
		w := archive(customer.Auth0ID, models.RoleCustomer, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin archives with an empty body", func(t *testing.T) {
		w := archive(admin.Auth0ID, models.RoleAdmin, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var stored models.Order
		require.NoError(t, db.First(&stored, order.ID).Error)
		assert.True(t, stored.Archived)
		assert.Equal(t, models.StatusCompleted, stored.Status)
	})

	t.Run("Admin unarchives explicitly", func(t *testing.T) {
		w := archive(admin.Auth0ID, models.RoleAdmin, []byte(`{"archived": false}`))
		require.Equal(t, http.StatusOK, w.Code)

		var stored models.Order
		require.NoError(t, db.First(&stored, order.ID).Error)
		assert.False(t, stored.Archived)
	})
}

func TestDeleteOrder(t *testing.T) {
	db := setupTestDB(t)
	designs, notifier := setupMockServices(t)

	customer := createTestCustomer(t, db, "auth0|customer123")
	admin := createTestAdmin(t, db, "auth0|admin123")
	material := createTestMaterial(t, db, "Cotton Twill", 5000)

	order := seedTestOrder(t, db, customer, material, models.StatusCompleted)

	deleteOrder := func(auth0ID, role, orderID string) *httptest.ResponseRecorder {
		router := setupTestRouter()
		router.DELETE("/orders/:id",
			mockAuthMiddleware(auth0ID, role),
			DeleteOrder,
		)
		req, _ := http.NewRequest(http.MethodDelete, "/orders/"+orderID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Customer cannot delete", func(t *testing.T) {
		w := deleteOrder(customer.Auth0ID, models.RoleCustomer, "1")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin deletes order and its design", func(t *testing.T) {
		w := deleteOrder(admin.Auth0ID, models.RoleAdmin, "1")
		require.Equal(t, http.StatusOK, w.Code)

		var count int64
		db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&count)
		assert.Equal(t, int64(0), count)

		assert.Contains(t, designs.DeletedKeys(), order.DesignS3Key)

		published := notifier.Published()
		require.NotEmpty(t, published)
		assert.Equal(t, services.ChangeDeleted, published[len(published)-1].Kind)
	})

	t.Run("Deleting an unknown order returns not found", func(t *testing.T) {
		w := deleteOrder(admin.Auth0ID, models.RoleAdmin, "9999")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
