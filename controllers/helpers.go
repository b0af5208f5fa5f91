package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierworks/garment-orders-api/config"
	"github.com/atelierworks/garment-orders-api/middleware"
	"github.com/atelierworks/garment-orders-api/models"
	"github.com/atelierworks/garment-orders-api/services"
)

// requireUser resolves the authenticated user from the JWT subject. On
// failure it writes the error response and returns ok=false; handlers
// should simply return in that case.
func requireUser(c *gin.Context) (models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return models.User{}, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return models.User{}, false
	}

	return user, true
}

// requireAdmin is requireUser plus an admin role check.
func requireAdmin(c *gin.Context) (models.User, bool) {
	user, ok := requireUser(c)
	if !ok {
		return models.User{}, false
	}

	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "This action requires the admin role",
			},
		})
		return models.User{}, false
	}

	return user, true
}

// decorateOrder fills the computed fields of an order: the presigned design
// URL and the transfer amount (total + unique payment code).
func decorateOrder(order *models.Order) {
	order.TransferAmount = order.TotalWithCode()

	designService := services.GetDesignService()
	if designService == nil {
		return
	}

	url, err := designService.ImageURL(order.DesignS3Key)
	if err != nil {
		// The order data is still useful without a design link
		log.Printf("Failed to presign design URL for order %d: %v", order.ID, err)
		return
	}
	order.DesignURL = url
}
