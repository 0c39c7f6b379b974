package api

import (
	"context" // Context for Redis operations
	"strconv" // String conversion
	"time"    // Clock for TOTP checks

	"studenthub/internal/domain" // Importing domain models
	"studenthub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// timeNow is swapped out in tests to pin TOTP steps
var timeNow = time.Now

// pageParams reads page/page_size query params with the usual bounds:
// page >= 1, page_size 1..100, defaults 1 and 20
func pageParams(c *gin.Context) (page, pageSize, offset int) {
	page = 1      // Default page number
	pageSize = 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	offset = (page - 1) * pageSize // Calculate offset for pagination
	return page, pageSize, offset
}

// currentUserID pulls the authenticated user ID the JWT middleware
// stored in the context
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return 0, false // Middleware did not run
	}
	id, ok := v.(uint)
	return id, ok
}

// totalPages computes the page count for a total and page size
func totalPages(total int64, pageSize int) int {
	return (int(total) + pageSize - 1) / pageSize
}

// notify stores a notification. Failures are returned so transactional
// callers can roll back together with the triggering write. Callers
// drop the recipient's cached pages after the transaction commits.
func notify(tx *gorm.DB, n domain.Notification) error {
	return tx.Create(&n).Error
}

// invalidateNotifications drops every cached notification page for a user
func invalidateNotifications(ctx context.Context, rdb *redis.Client, userID uint) {
	_ = utils.DeleteCachePrefix(ctx, rdb, "notifications:user:"+strconv.Itoa(int(userID))+":")
}

// invalidateWallet drops the wallet view and transaction history caches
func invalidateWallet(ctx context.Context, rdb *redis.Client, userID uint) {
	_ = utils.DeleteCache(ctx, rdb, "wallet:user:"+strconv.Itoa(int(userID)))
	_ = utils.DeleteCachePrefix(ctx, rdb, "txhistory:user:"+strconv.Itoa(int(userID))+":")
}
