package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"studenthub/internal/domain" // Importing domain models
	"studenthub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID        uint          `json:"id"`         // User ID
	Email     string        `json:"email"`      // Email
	Username  string        `json:"username"`   // Username
	Role      string        `json:"role"`       // User role
	FlagCount int           `json:"flag_count"` // Reports against the user
	Blocked   bool          `json:"blocked"`    // Block state
	Wallet    domain.Wallet `json:"wallet"`     // Associated wallet
}

// ListUsersHandler returns all users with their wallet info
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Users      []UserAdminResponse `json:"users"`       // List of users
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total number of users
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize, offset := pageParams(c) // Pagination parameters
		var total int64                         // Total user count
		// Fetch total user count and paginated users with wallet info
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User // Slice to hold users
		// Preload Wallet relation, apply offset and limit for pagination
		if err := db.Preload("Wallet").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		// Prepare response data
		resp := make([]UserAdminResponse, len(users))
		// Map users to response format
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:        u.ID,        // User ID
				Email:     u.Email,     // Email
				Username:  u.Username,  // Username
				Role:      u.Role,      // User role
				FlagCount: u.FlagCount, // Reports against the user
				Blocked:   u.Blocked,   // Block state
				Wallet:    u.Wallet,    // Associated wallet
			}
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,                        // List of users
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total number of users
			"total_pages": totalPages(total, pageSize), // Total pages
			"cached":      false,                       // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListTransactionsHandler returns all wallet transactions, with
// optional filtering by wallet, type, status or date
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"wallet_id", "type", "status", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := "admin:txs:" + strings.Join(keyParts, ":")
		var cached struct {
			Transactions []domain.WalletTransaction `json:"transactions"` // List of transactions
			Page         int                        `json:"page"`         // Current page
			PageSize     int                        `json:"page_size"`    // Page size
			Total        int64                      `json:"total"`        // Total number of transactions
			TotalPages   int                        `json:"total_pages"`  // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // List of transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total number of transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		page, pageSize, offset := pageParams(c)        // Pagination parameters
		query := db.Model(&domain.WalletTransaction{}) // Start building the query
		if walletID := c.Query("wallet_id"); walletID != "" {
			query = query.Where("wallet_id = ? OR peer_wallet_id = ?", walletID, walletID) // Filter by wallet ID
		}
		if txType := c.Query("type"); txType != "" {
			query = query.Where("type = ?", txType) // Filter by transaction type
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status) // Filter by settlement status
		}
		if from := c.Query("from"); from != "" {
			query = query.Where("created_at >= ?", from) // Filter by start date
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("created_at <= ?", to) // Filter by end date
		}
		var total int64 // Total transaction count
		// Get total count of transactions matching the filters
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var txs []domain.WalletTransaction // Slice to hold transactions
		// Fetch paginated transactions with filters applied
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&txs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		respData := gin.H{
			"transactions": txs,                         // List of transactions
			"page":         page,                        // Current page
			"page_size":    pageSize,                    // Page size
			"total":        total,                       // Total number of transactions
			"total_pages":  totalPages(total, pageSize), // Total pages
			"cached":       false,                       // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListProjectOrdersHandler returns the moderation queue, optionally
// filtered by status
func ListProjectOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pageParams(c) // Pagination parameters
		query := db.Model(&domain.ProjectOrder{})
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status) // Filter by status
		}
		var total int64 // Total order count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count projects"})
			return
		}
		var orders []domain.ProjectOrder // Slice to hold orders
		if err := query.Order("created_at asc").Offset(offset).Limit(pageSize).Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"projects":    orders,                      // List of orders
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total orders
			"total_pages": totalPages(total, pageSize), // Total pages
		})
	}
}

// projectStatusChange applies a reviewed status to an order and tells
// the owner, inside one transaction
func projectStatusChange(c *gin.Context, db *gorm.DB, rdb *redis.Client, allowedFrom []string, newStatus, note string) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}
	var order domain.ProjectOrder
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	// The transition must start from an allowed status
	ok := false
	for _, s := range allowedFrom {
		if order.Status == s {
			ok = true
			break
		}
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project cannot move to " + newStatus + " from " + order.Status})
		return
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": newStatus}
		if note != "" {
			updates["admin_note"] = note // Reviewer note travels with the decision
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err // Return error to rollback
		}
		return notify(tx, domain.Notification{
			RecipientID: order.UserID,                                      // Owner hears about it
			Type:        domain.NotifOrderStatus,                           // Notification type
			TargetID:    order.ID,                                          // The order
			TargetType:  "order",                                           // Target kind
			Message:     "Your project " + order.Reference + " is now " + newStatus, // Rendered message
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}
	invalidateNotifications(context.Background(), rdb, order.UserID)
	// Log the moderation action
	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,  // The order
		"status":   newStatus, // New status
	}).Info("Project status changed")
	c.JSON(http.StatusOK, gin.H{"project": order})
}

// ApproveProjectHandler accepts a pending order
func ApproveProjectHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectStatusChange(c, db, rdb, []string{domain.ProjectPending}, domain.ProjectApproved, "")
	}
}

// RejectProjectHandler declines a pending order with a note
func RejectProjectHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Note string `json:"note"` // Why the order was declined
		}
		_ = c.ShouldBindJSON(&req) // Note is optional
		projectStatusChange(c, db, rdb, []string{domain.ProjectPending}, domain.ProjectRejected, req.Note)
	}
}

// SetProjectStatusHandler moves an approved order through the
// fulfillment stages
func SetProjectStatusHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status string `json:"status" binding:"required"` // in_progress or delivered
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		switch req.Status {
		case domain.ProjectInProgress:
			projectStatusChange(c, db, rdb, []string{domain.ProjectApproved}, domain.ProjectInProgress, "")
		case domain.ProjectDelivered:
			projectStatusChange(c, db, rdb, []string{domain.ProjectInProgress}, domain.ProjectDelivered, "")
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be in_progress or delivered"})
		}
	}
}

// setUserBlocked flips the blocked flag and tells the user
func setUserBlocked(c *gin.Context, db *gorm.DB, rdb *redis.Client, blocked bool) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil || targetID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	var user domain.User
	if err := db.First(&user, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	msg := "Your account has been unblocked"
	if blocked {
		msg = "Your account has been blocked"
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("blocked", blocked).Error; err != nil {
			return err // Return error to rollback
		}
		return notify(tx, domain.Notification{
			RecipientID: user.ID,                  // The affected user
			Type:        domain.NotifAccountState, // Notification type
			TargetID:    user.ID,                  // Themselves
			TargetType:  "user",                   // Target kind
			Message:     msg,                      // Rendered message
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	invalidateNotifications(context.Background(), rdb, user.ID)
	// Log the moderation action
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID, // The affected user
		"blocked": blocked, // New state
	}).Info("User block state changed")
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// BlockUserHandler blocks an account by admin decision
func BlockUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		setUserBlocked(c, db, rdb, true)
	}
}

// UnblockUserHandler lifts a block
func UnblockUserHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		setUserBlocked(c, db, rdb, false)
	}
}
