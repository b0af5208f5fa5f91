package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierworks/garment-orders-api/services"
)

// GetOrderDesign handles GET /api/v1/orders/:id/design - redirects to a
// short-lived presigned URL for the order's design image. Visible to the
// order's owner and admins.
func GetOrderDesign(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	order, ok := fetchOrderForActor(c, user)
	if !ok {
		return
	}

	if order.DesignS3Key == "" {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DESIGN_NOT_FOUND",
				"message": "This order has no stored design",
			},
		})
		return
	}

	url, err := services.GetDesignService().ImageURL(order.DesignS3Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRESIGN_ERROR",
				"message": "Failed to generate a download link for the design",
			},
		})
		return
	}

	// Presigned URLs expire; clients must not cache the redirect
	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusTemporaryRedirect, url)
}
