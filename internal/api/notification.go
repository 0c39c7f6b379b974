package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing
	"time"     // Cache TTLs

	"studenthub/internal/domain" // Importing domain models
	"studenthub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// ListNotificationsHandler returns the user's notifications, newest
// first, cached per page
func ListNotificationsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize, offset := pageParams(c) // Pagination parameters
		ctx := context.Background()             // Context for Redis operations
		cacheKey := "notifications:user:" + strconv.Itoa(int(userID)) + ":page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached struct {
			Notifications []domain.Notification `json:"notifications"` // Page of notifications
			Unread        int64                 `json:"unread"`        // Unread count
			Page          int                   `json:"page"`          // Current page
			PageSize      int                   `json:"page_size"`     // Page size
			Total         int64                 `json:"total"`         // Total notifications
			TotalPages    int                   `json:"total_pages"`   // Total pages
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"notifications": cached.Notifications, // Cached notifications
				"unread":        cached.Unread,        // Unread count
				"page":          cached.Page,          // Current page
				"page_size":     cached.PageSize,      // Page size
				"total":         cached.Total,         // Total notifications
				"total_pages":   cached.TotalPages,    // Total pages
				"cached":        true,                 // Indicate response is from cache
			})
			return
		}
		var total int64 // Total notification count
		if err := db.Model(&domain.Notification{}).Where("recipient_id = ?", userID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
			return
		}
		var unread int64 // Unread badge count
		if err := db.Model(&domain.Notification{}).Where("recipient_id = ? AND is_read = ?", userID, false).Count(&unread).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
			return
		}
		var notifications []domain.Notification // Slice to hold notifications
		if err := db.Where("recipient_id = ?", userID).Order("created_at desc").Offset(offset).Limit(pageSize).Find(&notifications).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		respData := gin.H{
			"notifications": notifications,               // Page of notifications
			"unread":        unread,                      // Unread count
			"page":          page,                        // Current page
			"page_size":     pageSize,                    // Page size
			"total":         total,                       // Total notifications
			"total_pages":   totalPages(total, pageSize), // Total pages
			"cached":        false,                       // Not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData)
	}
}

// MarkNotificationReadHandler marks one notification read. Marking an
// already-read notification succeeds again without changes.
func MarkNotificationReadHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		notifID, err := strconv.Atoi(c.Param("id"))
		if err != nil || notifID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
			return
		}
		var n domain.Notification // Ownership is part of the lookup
		if err := db.Where("id = ? AND recipient_id = ?", notifID, userID).First(&n).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		if !n.IsRead {
			if err := db.Model(&n).Update("is_read", true).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
				return
			}
			invalidateNotifications(context.Background(), rdb, userID)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
	}
}

// MarkAllNotificationsReadHandler marks every unread notification read
func MarkAllNotificationsReadHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		res := db.Model(&domain.Notification{}).
			Where("recipient_id = ? AND is_read = ?", userID, false).
			Update("is_read", true)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
			return
		}
		if res.RowsAffected > 0 {
			invalidateNotifications(context.Background(), rdb, userID)
		}
		c.JSON(http.StatusOK, gin.H{"message": "All notifications marked read", "updated": res.RowsAffected})
	}
}
