package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierworks/garment-orders-api/config"
	"github.com/atelierworks/garment-orders-api/models"
)

// ListNotifications handles GET /api/v1/notifications - the current user's
// notifications, newest first. ?unread=true narrows to unread ones.
func ListNotifications(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Where("user_id = ?", user.ID).Order("created_at DESC")
	if c.Query("unread") == "true" {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list notifications",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read - marks
// one of the current user's notifications as read. Idempotent.
func MarkNotificationRead(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var notification models.Notification
	if err := db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOTIFICATION_NOT_FOUND",
				"message": "Notification not found",
			},
		})
		return
	}

	if notification.ReadAt == nil {
		now := time.Now()
		if err := db.Model(&notification).Update("read_at", now).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update notification",
				},
			})
			return
		}
		notification.ReadAt = &now
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notification,
	})
}
