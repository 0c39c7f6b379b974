package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing
	"time"     // Cache TTLs

	"studenthub/internal/domain" // Importing domain models
	"studenthub/internal/images" // Image host client
	"studenthub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CreateListingRequest represents a new marketplace listing
type CreateListingRequest struct {
	Title       string  `json:"title" binding:"required"`      // Listing title
	Description string  `json:"description"`                   // Item description
	Price       float64 `json:"price" binding:"required,gt=0"` // Asking price
	Category    string  `json:"category" binding:"required"`   // e.g. books, electronics
	Condition   string  `json:"condition"`                     // e.g. new, used
	Image       string  `json:"image"`                         // Optional base64 photo
}

// UpdateListingRequest carries edits to an active listing
type UpdateListingRequest struct {
	Title       *string  `json:"title"`       // New title, optional
	Description *string  `json:"description"` // New description, optional
	Price       *float64 `json:"price"`       // New price, optional
	Category    *string  `json:"category"`    // New category, optional
	Condition   *string  `json:"condition"`   // New condition, optional
}

// invalidateMarket drops every cached browse page
func invalidateMarket(ctx context.Context, rdb *redis.Client) {
	_ = utils.DeleteCachePrefix(ctx, rdb, "market:")
}

// BrowseListingsHandler returns active listings, optionally filtered
// by category, cached per page
func BrowseListingsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pageParams(c) // Pagination parameters
		category := c.Query("category")         // Optional category filter
		ctx := context.Background()             // Context for Redis operations
		// Cache key covers every parameter that shapes the page
		cacheKey := "market:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize) + ":cat=" + category
		var cached struct {
			Listings   []domain.Listing `json:"listings"`    // Page of listings
			Page       int              `json:"page"`        // Current page
			PageSize   int              `json:"page_size"`   // Page size
			Total      int64            `json:"total"`       // Total listings
			TotalPages int              `json:"total_pages"` // Total pages
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"listings":    cached.Listings,   // Cached listings
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total listings
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		query := db.Model(&domain.Listing{}).Where("status = ?", domain.ListingActive)
		if category != "" {
			query = query.Where("category = ?", category) // Filter by category
		}
		var total int64 // Total listing count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count listings"})
			return
		}
		var listings []domain.Listing // Slice to hold listings
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&listings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
			return
		}
		respData := gin.H{
			"listings":    listings,                    // Page of listings
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total listings
			"total_pages": totalPages(total, pageSize), // Total pages
			"cached":      false,                       // Not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData)
	}
}

// GetListingHandler returns a single listing; removed listings 404
func GetListingHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		listingID, err := strconv.Atoi(c.Param("id"))
		if err != nil || listingID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
			return
		}
		var listing domain.Listing
		if err := db.First(&listing, listingID).Error; err != nil || listing.Status == domain.ListingRemoved {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"listing": listing})
	}
}

// CreateListingHandler posts a listing, uploading the photo first when
// one was attached
func CreateListingHandler(db *gorm.DB, rdb *redis.Client, imgs *images.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateListingRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		listing := domain.Listing{
			SellerID:    userID,               // Owning user
			Title:       req.Title,            // Listing title
			Description: req.Description,      // Description
			Price:       req.Price,            // Asking price
			Category:    req.Category,         // Category
			Condition:   req.Condition,        // Condition
			Status:      domain.ListingActive, // New listings go live immediately
		}
		// Upload the photo before touching the database
		if req.Image != "" {
			url, err := imgs.Upload(c.Request.Context(), "listing-"+strconv.Itoa(int(userID)), req.Image)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"user_id": userID,      // User ID
					"error":   err.Error(), // Error message
				}).Error("Listing image upload failed") // Log upload failure
				c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
				return
			}
			listing.ImageURL = url
		}
		if err := db.Create(&listing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
			return
		}
		invalidateMarket(context.Background(), rdb) // New listing changes every browse page
		c.JSON(http.StatusCreated, gin.H{"listing": listing})
	}
}

// loadOwnListing fetches a listing by path ID and checks ownership,
// writing the error response itself on failure
func loadOwnListing(c *gin.Context, db *gorm.DB, userID uint) (*domain.Listing, bool) {
	listingID, err := strconv.Atoi(c.Param("id"))
	if err != nil || listingID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID"})
		return nil, false
	}
	var listing domain.Listing
	if err := db.First(&listing, listingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return nil, false
	}
	// Ownership check before any mutation
	if listing.SellerID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return nil, false
	}
	return &listing, true
}

// UpdateListingHandler edits an active listing
func UpdateListingHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		listing, ok := loadOwnListing(c, db, userID)
		if !ok {
			return // Error response already written
		}
		if listing.Status != domain.ListingActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only active listings can be edited"})
			return
		}
		var req UpdateListingRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updates := map[string]any{} // Only touch fields that were sent
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Price != nil {
			if *req.Price <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be positive"})
				return
			}
			updates["price"] = *req.Price
		}
		if req.Category != nil {
			updates["category"] = *req.Category
		}
		if req.Condition != nil {
			updates["condition"] = *req.Condition
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}
		if err := db.Model(listing).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update listing"})
			return
		}
		invalidateMarket(context.Background(), rdb) // Edited listing changes browse pages
		c.JSON(http.StatusOK, gin.H{"listing": listing})
	}
}

// MarkListingSoldHandler marks an active listing sold and records the
// sale in the seller's notification feed
func MarkListingSoldHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		listing, ok := loadOwnListing(c, db, userID)
		if !ok {
			return // Error response already written
		}
		if listing.Status != domain.ListingActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only active listings can be marked sold"})
			return
		}
		// The status change and the sale record land together
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(listing).Update("status", domain.ListingSold).Error; err != nil {
				return err // Return error to rollback
			}
			return notify(tx, domain.Notification{
				RecipientID: listing.SellerID,                         // Seller's sale record
				Type:        domain.NotifListingSold,                  // Notification type
				TargetID:    listing.ID,                               // The listing
				TargetType:  "listing",                                // Target kind
				Message:     "Your listing " + listing.Title + " was sold", // Rendered message
			})
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update listing"})
			return
		}
		ctx := context.Background()
		invalidateMarket(ctx, rdb) // Sold listing leaves browse pages
		invalidateNotifications(ctx, rdb, listing.SellerID)
		c.JSON(http.StatusOK, gin.H{"message": "Listing marked sold"})
	}
}

// DeleteListingHandler takes a listing down; the row is kept with
// removed status so past references stay resolvable
func DeleteListingHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		listing, ok := loadOwnListing(c, db, userID)
		if !ok {
			return // Error response already written
		}
		if err := db.Model(listing).Update("status", domain.ListingRemoved).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove listing"})
			return
		}
		invalidateMarket(context.Background(), rdb) // Removed listing leaves browse pages
		c.JSON(http.StatusOK, gin.H{"message": "Listing removed"})
	}
}
