package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/atelierworks/garment-orders-api/config"
	"github.com/atelierworks/garment-orders-api/models"
	"github.com/atelierworks/garment-orders-api/services"
	"github.com/atelierworks/garment-orders-api/utils"
)

// Placement text length policy for the design placement description.
const (
	minPlacementLength = 10
	maxPlacementLength = 500
)

var priceCalculator = services.NewPriceCalculator()

// SetPriceCalculator swaps the calculator instance (primarily for testing)
func SetPriceCalculator(calc *services.PriceCalculator) {
	priceCalculator = calc
}

func newTransitionService(db *gorm.DB) *services.TransitionService {
	estimator := services.NewProductionEstimator(services.NewGormOrderCounter(db))
	return services.NewTransitionService(db, estimator, services.GetNotifier())
}

// EstimateOrderRequest represents the request body for a pre-confirmation quote
type EstimateOrderRequest struct {
	MaterialID uint `json:"material_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required"`
}

// EstimateOrder handles POST /api/v1/orders/estimate - quotes total price and
// completion time before the customer confirms an order
func EstimateOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	var req EstimateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var material models.Material
	if err := db.First(&material, req.MaterialID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MATERIAL_NOT_FOUND",
				"message": "Material not found",
			},
		})
		return
	}

	estimator := services.NewProductionEstimator(services.NewGormOrderCounter(db))
	quote, err := services.BuildOrderQuote(c.Request.Context(), priceCalculator, estimator, material.PricePerPiece, req.Quantity, user.ID)
	if err != nil {
		respondQuoteError(c, err)
		return
	}

	// The payment code is only assigned when the order is created; a quote
	// is an estimate, not a reservation.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"material_id":               material.ID,
			"material_name":             material.Name,
			"unit_price":                material.PricePerPiece,
			"quantity":                  req.Quantity,
			"total_amount":              quote.TotalAmount,
			"estimated_completion_days": quote.EstimatedCompletionDays,
		},
	})
}

// CreateOrder handles POST /api/v1/orders - creates a new order with an
// uploaded design (customers only). Expects a multipart form with
// material_id, quantity, placement and a design file.
func CreateOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	// Only customers create orders
	if user.Role != models.RoleCustomer {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only customers can create orders",
			},
		})
		return
	}

	materialID, err := strconv.ParseUint(c.PostForm("material_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "material_id must be a positive integer",
			},
		})
		return
	}

	quantity, err := strconv.Atoi(c.PostForm("quantity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "quantity must be an integer",
			},
		})
		return
	}

	placement := c.PostForm("placement")
	if len(placement) < minPlacementLength || len(placement) > maxPlacementLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PLACEMENT",
				"message": "Placement description must be between 10 and 500 characters",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("design")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_DESIGN",
				"message": "A design image file is required",
			},
		})
		return
	}

	db := config.GetDB()
	var material models.Material
	if err := db.First(&material, uint(materialID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MATERIAL_NOT_FOUND",
				"message": "Material not found",
			},
		})
		return
	}

	// Quote first: no upload happens for an order that would be rejected
	estimator := services.NewProductionEstimator(services.NewGormOrderCounter(db))
	quote, err := services.BuildOrderQuote(c.Request.Context(), priceCalculator, estimator, material.PricePerPiece, quantity, user.ID)
	if err != nil {
		respondQuoteError(c, err)
		return
	}

	designService := services.GetDesignService()
	designKey, err := designService.UploadDesign(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to store the design image",
			},
		})
		return
	}

	order := models.Order{
		CustomerID:              user.ID,
		MaterialID:              material.ID,
		MaterialName:            material.Name,
		UnitPrice:               material.PricePerPiece,
		Quantity:                quantity,
		Placement:               placement,
		DesignS3Key:             designKey,
		TotalAmount:             quote.TotalAmount,
		UniqueCode:              quote.UniqueCode,
		Status:                  models.StatusAwaitingPayment,
		EstimatedCompletionDays: &quote.EstimatedCompletionDays,
	}

	if err := db.Create(&order).Error; err != nil {
		// Compensating action: the design already reached storage, remove
		// it so a failed insert leaves nothing behind
		if delErr := designService.DeleteImage(designKey); delErr != nil {
			// Orphaned object; deletion can be retried out of band
			c.Error(delErr)
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	// Load the customer relationship to return complete data
	if err := db.Preload("Customer").First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}
	decorateOrder(&order)

	if notifier := services.GetNotifier(); notifier != nil {
		notifier.PublishOrderChange(c.Request.Context(), services.OrderChange{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Kind:       services.ChangeCreated,
			Status:     order.Status,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - customers see their own orders,
// admins see all orders (archived ones only with ?include_archived=true)
func ListOrders(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Preload("Customer").Order("created_at DESC")

	if user.IsAdmin() {
		if c.Query("include_archived") != "true" {
			query = query.Where("archived = ?", false)
		}
	} else {
		query = query.Where("customer_id = ?", user.ID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}

	for i := range orders {
		decorateOrder(&orders[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - returns one order for its owner
// or an admin
func GetOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	order, ok := fetchOrderForActor(c, user)
	if !ok {
		return
	}
	decorateOrder(&order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// PayOrder handles POST /api/v1/orders/:id/pay - the customer confirms the
// simulated bank transfer for their own order
func PayOrder(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	order, ok := fetchOrderForActor(c, user)
	if !ok {
		return
	}

	svc := newTransitionService(config.GetDB())
	result, err := svc.ConfirmPayment(c.Request.Context(), user, &order)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Only the order's owner can confirm payment",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record payment",
			},
		})
		return
	}

	decorateOrder(&order)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         order,
		"already_paid": !result.Changed,
	})
}

// UpdateOrderStatusRequest represents the request body for a status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status - admins move an
// order through the pipeline; off-pipeline reassignments are applied as
// audited overrides
func UpdateOrderStatus(c *gin.Context) {
	user, ok := requireAdmin(c)
	if !ok {
		return
	}

	order, ok := fetchOrderForActor(c, user)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	target, err := models.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": err.Error(),
			},
		})
		return
	}

	svc := newTransitionService(config.GetDB())
	result, err := svc.ApplyStatus(c.Request.Context(), user, &order, target)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	decorateOrder(&order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
		"changed": result.Changed,
		"override": result.Override,
	})
}

// ArchiveOrderRequest represents the request body for archiving an order
type ArchiveOrderRequest struct {
	Archived *bool `json:"archived"` // defaults to true
}

// ArchiveOrder handles POST /api/v1/orders/:id/archive - admins hide
// (typically completed) orders from default views. Archiving does not touch
// the status axis.
func ArchiveOrder(c *gin.Context) {
	user, ok := requireAdmin(c)
	if !ok {
		return
	}

	order, ok := fetchOrderForActor(c, user)
	if !ok {
		return
	}

	// An empty or malformed body means "archive"
	var req ArchiveOrderRequest
	_ = c.ShouldBindJSON(&req)
	archived := true
	if req.Archived != nil {
		archived = *req.Archived
	}

	db := config.GetDB()
	if err := db.Model(&order).Update("archived", archived).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order",
			},
		})
		return
	}

	if notifier := services.GetNotifier(); notifier != nil {
		notifier.PublishOrderChange(c.Request.Context(), services.OrderChange{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Kind:       services.ChangeArchived,
			Status:     order.Status,
		})
	}

	decorateOrder(&order)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id - admins remove an order
// along with its stored design image
func DeleteOrder(c *gin.Context) {
	user, ok := requireAdmin(c)
	if !ok {
		return
	}

	order, ok := fetchOrderForActor(c, user)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Delete(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete order",
			},
		})
		return
	}

	if designService := services.GetDesignService(); designService != nil {
		if err := designService.DeleteImage(order.DesignS3Key); err != nil {
			// The record is gone; an orphaned design can be cleaned later
			c.Error(err)
		}
	}

	if notifier := services.GetNotifier(); notifier != nil {
		notifier.PublishOrderChange(c.Request.Context(), services.OrderChange{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Kind:       services.ChangeDeleted,
			Status:     order.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted",
	})
}

// fetchOrderForActor loads the order from the :id parameter and enforces
// visibility: owners and admins only. Writes the error response itself.
func fetchOrderForActor(c *gin.Context, user models.User) (models.Order, bool) {
	orderID := c.Param("id")

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Customer").First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return models.Order{}, false
	}

	if !user.IsAdmin() && order.CustomerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You do not have access to this order",
			},
		})
		return models.Order{}, false
	}

	return order, true
}

// respondQuoteError maps calculator/estimator failures onto the API error
// envelope.
func respondQuoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_QUANTITY",
				"message": "Quantity must be between 24 and 1000 pieces",
			},
		})
	case errors.Is(err, services.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PRICE",
				"message": "Material unit price must be positive",
			},
		})
	case errors.Is(err, services.ErrDependencyUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "Could not read the current production workload",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to build order quote",
			},
		})
	}
}

// respondTransitionError maps transition engine failures onto the API error
// envelope.
func respondTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You are not allowed to change this order's status",
			},
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "The requested status is not valid",
			},
		})
	case errors.Is(err, services.ErrDependencyUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "Could not read the current production workload",
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order status",
			},
		})
	}
}
