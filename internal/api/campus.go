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

// CreatePostRequest represents a new campus feed post
type CreatePostRequest struct {
	Body  string `json:"body" binding:"required"` // Post text
	Image string `json:"image"`                   // Optional base64 photo
}

// CreateCommentRequest represents a comment on a post
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"` // Comment text
}

// invalidateFeed drops every cached feed page
func invalidateFeed(ctx context.Context, rdb *redis.Client) {
	_ = utils.DeleteCachePrefix(ctx, rdb, "feed:")
}

// loadVisiblePost fetches a non-hidden post by path ID, writing the
// error response itself on failure
func loadVisiblePost(c *gin.Context, db *gorm.DB) (*domain.CampusPost, bool) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil || postID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return nil, false
	}
	var post domain.CampusPost
	if err := db.First(&post, postID).Error; err != nil || post.Hidden {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil, false
	}
	return &post, true
}

// GetFeedHandler returns the campus feed, newest first, hidden posts
// excluded, cached per page
func GetFeedHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, pageSize, offset := pageParams(c) // Pagination parameters
		ctx := context.Background()             // Context for Redis operations
		cacheKey := "feed:page=" + strconv.Itoa(page) + ":size=" + strconv.Itoa(pageSize)
		var cached struct {
			Posts      []domain.CampusPost `json:"posts"`       // Page of posts
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total posts
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"posts":       cached.Posts,      // Cached posts
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total posts
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		query := db.Model(&domain.CampusPost{}).Where("hidden = ?", false)
		var total int64 // Total post count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count posts"})
			return
		}
		var posts []domain.CampusPost // Slice to hold posts
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&posts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
			return
		}
		respData := gin.H{
			"posts":       posts,                       // Page of posts
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total posts
			"total_pages": totalPages(total, pageSize), // Total pages
			"cached":      false,                       // Not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData)
	}
}

// CreatePostHandler publishes a feed post, uploading the photo first
// when one was attached
func CreatePostHandler(db *gorm.DB, rdb *redis.Client, imgs *images.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreatePostRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if len(req.Body) > 2000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Post must be at most 2000 characters"})
			return
		}
		post := domain.CampusPost{
			AuthorID: userID,   // Posting user
			Body:     req.Body, // Post text
		}
		// Upload the photo before touching the database
		if req.Image != "" {
			url, err := imgs.Upload(c.Request.Context(), "post-"+strconv.Itoa(int(userID)), req.Image)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"user_id": userID,      // User ID
					"error":   err.Error(), // Error message
				}).Error("Post image upload failed") // Log upload failure
				c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
				return
			}
			post.ImageURL = url
		}
		if err := db.Create(&post).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
			return
		}
		invalidateFeed(context.Background(), rdb) // New post changes every feed page
		c.JSON(http.StatusCreated, gin.H{"post": post})
	}
}

// DeletePostHandler removes the caller's own post and its comments
// and likes
func DeletePostHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		postID, err := strconv.Atoi(c.Param("id"))
		if err != nil || postID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
			return
		}
		var post domain.CampusPost
		if err := db.First(&post, postID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		// Ownership check before any mutation
		if post.AuthorID != userID {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		// Remove the post and its dependents together
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("post_id = ?", post.ID).Delete(&domain.PostComment{}).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Where("post_id = ?", post.ID).Delete(&domain.PostLike{}).Error; err != nil {
				return err // Return error to rollback
			}
			return tx.Delete(&post).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
			return
		}
		invalidateFeed(context.Background(), rdb) // Deleted post leaves feed pages
		c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
	}
}

// LikePostHandler toggles the caller's like on a post and keeps the
// denormalized counter in step
func LikePostHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		post, ok := loadVisiblePost(c, db)
		if !ok {
			return // Error response already written
		}
		liked := false
		err := db.Transaction(func(tx *gorm.DB) error {
			var existing domain.PostLike
			err := tx.Where("post_id = ? AND user_id = ?", post.ID, userID).First(&existing).Error
			if err == nil {
				// Second tap removes the like
				if err := tx.Delete(&existing).Error; err != nil {
					return err // Return error to rollback
				}
				return tx.Model(post).Update("like_count", gorm.Expr("like_count - 1")).Error
			}
			if err != gorm.ErrRecordNotFound {
				return err // Unexpected lookup failure
			}
			like := domain.PostLike{PostID: post.ID, UserID: userID}
			if err := tx.Create(&like).Error; err != nil {
				return err // Return error to rollback
			}
			if err := tx.Model(post).Update("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
				return err // Return error to rollback
			}
			liked = true
			// Authors do not get notified about their own likes
			if post.AuthorID == userID {
				return nil
			}
			return notify(tx, domain.Notification{
				RecipientID: post.AuthorID,          // Author hears about it
				ActorID:     &userID,                // Liking user triggered it
				Type:        domain.NotifPostLike,   // Notification type
				TargetID:    post.ID,                // Liked post
				TargetType:  "post",                 // Target kind
				Message:     "Someone liked your post", // Rendered message
			})
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
			return
		}
		ctx := context.Background()
		invalidateFeed(ctx, rdb) // Like counts show in the feed
		if liked && post.AuthorID != userID {
			invalidateNotifications(ctx, rdb, post.AuthorID)
		}
		c.JSON(http.StatusOK, gin.H{"liked": liked})
	}
}

// CreateCommentHandler adds a comment and notifies the post author
func CreateCommentHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		post, ok := loadVisiblePost(c, db)
		if !ok {
			return // Error response already written
		}
		var req CreateCommentRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if len(req.Body) > 1000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Comment must be at most 1000 characters"})
			return
		}
		comment := domain.PostComment{
			PostID:   post.ID,  // Commented post
			AuthorID: userID,   // Commenting user
			Body:     req.Body, // Comment text
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&comment).Error; err != nil {
				return err // Return error to rollback
			}
			// Authors do not get notified about their own comments
			if post.AuthorID == userID {
				return nil
			}
			return notify(tx, domain.Notification{
				RecipientID: post.AuthorID,                 // Author hears about it
				ActorID:     &userID,                       // Commenting user triggered it
				Type:        domain.NotifPostComment,       // Notification type
				TargetID:    post.ID,                       // Commented post
				TargetType:  "post",                        // Target kind
				Message:     "Someone commented on your post", // Rendered message
			})
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
			return
		}
		if post.AuthorID != userID {
			invalidateNotifications(context.Background(), rdb, post.AuthorID)
		}
		c.JSON(http.StatusCreated, gin.H{"comment": comment})
	}
}

// ListCommentsHandler returns a post's comments, oldest first
func ListCommentsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		post, ok := loadVisiblePost(c, db)
		if !ok {
			return // Error response already written
		}
		page, pageSize, offset := pageParams(c) // Pagination parameters
		var total int64                         // Total comment count
		if err := db.Model(&domain.PostComment{}).Where("post_id = ?", post.ID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count comments"})
			return
		}
		var comments []domain.PostComment // Slice to hold comments
		if err := db.Where("post_id = ?", post.ID).Order("created_at asc").Offset(offset).Limit(pageSize).Find(&comments).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"comments":    comments,                    // Page of comments
			"page":        page,                        // Current page
			"page_size":   pageSize,                    // Page size
			"total":       total,                       // Total comments
			"total_pages": totalPages(total, pageSize), // Total pages
		})
	}
}

// FlagPostHandler files a report against a post. The third distinct
// report hides the post, inside the same transaction.
func FlagPostHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		reporterID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		post, ok := loadVisiblePost(c, db)
		if !ok {
			return // Error response already written
		}
		if post.AuthorID == reporterID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot flag your own post"})
			return
		}
		var req FlagRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		hidden := false
		err := db.Transaction(func(tx *gorm.DB) error {
			pid := post.ID
			flag := domain.UserFlag{
				ReporterID:   reporterID, // Reporting user
				TargetPostID: &pid,       // Reported post
				Reason:       req.Reason, // Free-text reason
			}
			if err := tx.Create(&flag).Error; err != nil {
				return err // Duplicate report rolls back here
			}
			// Count distinct reports and hide at the threshold
			var count int64
			if err := tx.Model(&domain.UserFlag{}).Where("target_post_id = ?", pid).Count(&count).Error; err != nil {
				return err
			}
			updates := map[string]any{"flag_count": count}
			if count >= domain.FlagThreshold {
				updates["hidden"] = true
				hidden = true
			}
			return tx.Model(&domain.CampusPost{}).Where("id = ?", pid).Updates(updates).Error
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have already flagged this post"})
			return
		}
		if hidden {
			invalidateFeed(context.Background(), rdb) // Hidden post leaves feed pages
		}
		// Log the report
		logrus.WithFields(logrus.Fields{
			"reporter_id": reporterID, // Reporting user
			"post_id":     post.ID,    // Reported post
			"hidden":      hidden,     // Whether the threshold tripped
		}).Info("Post flagged")
		c.JSON(http.StatusOK, gin.H{"message": "Post flagged", "hidden": hidden})
	}
}
