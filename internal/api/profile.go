package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing
	"strings"  // Username normalization

	"studenthub/internal/domain" // Importing domain models
	"studenthub/internal/images" // Image host client

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for profile updates
type UpdateProfileRequest struct {
	Username *string `json:"username"` // New handle, optional
	Phone    *string `json:"phone"`    // New phone, optional
	Bio      *string `json:"bio"`      // New bio, optional
}

// Request struct for avatar upload
type AvatarRequest struct {
	Image string `json:"image" binding:"required"` // Base64 image payload
}

// Request struct for flagging a user or post
type FlagRequest struct {
	Reason string `json:"reason" binding:"required"` // Why this is being reported
}

// GetProfileHandler returns the authenticated user's profile
func GetProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": user})
	}
}

// UpdateProfileHandler updates username, phone and bio
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		updates := map[string]any{} // Only touch fields that were sent
		if req.Username != nil {
			if !isValidUsername(*req.Username) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-20 letters, digits or underscores, starting with a letter"})
				return
			}
			// Handles are stored lowercase, matching registration
			updates["username"] = strings.ToLower(*req.Username)
		}
		if req.Phone != nil {
			updates["phone"] = *req.Phone
		}
		if req.Bio != nil {
			if len(*req.Bio) > 500 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Bio must be at most 500 characters"})
				return
			}
			updates["bio"] = *req.Bio
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			// Duplicate username is the common failure here
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": user})
	}
}

// UploadAvatarHandler sends the base64 payload to the image host and
// stores the returned URL on the profile
func UploadAvatarHandler(db *gorm.DB, imgs *images.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req AvatarRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		url, err := imgs.Upload(c.Request.Context(), "avatar-"+strconv.Itoa(int(userID)), req.Image)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Avatar upload failed") // Log upload failure
			c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
			return
		}
		if err := db.Model(&domain.User{}).Where("id = ?", userID).Update("avatar_url", url).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save avatar"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"avatar_url": url})
	}
}

// FlagUserHandler files a report against another user. The third
// distinct report blocks the account, inside the same transaction.
func FlagUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		reporterID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		targetID, err := strconv.Atoi(c.Param("id"))
		if err != nil || targetID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
			return
		}
		if uint(targetID) == reporterID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot flag yourself"})
			return
		}
		var req FlagRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var target domain.User
		if err := db.First(&target, targetID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		blocked := false
		err = db.Transaction(func(tx *gorm.DB) error {
			tid := uint(targetID)
			flag := domain.UserFlag{
				ReporterID:   reporterID, // Reporting user
				TargetUserID: &tid,       // Reported user
				Reason:       req.Reason, // Free-text reason
			}
			if err := tx.Create(&flag).Error; err != nil {
				return err // Duplicate report rolls back here
			}
			// Count distinct reports and block at the threshold
			var count int64
			if err := tx.Model(&domain.UserFlag{}).Where("target_user_id = ?", tid).Count(&count).Error; err != nil {
				return err
			}
			updates := map[string]any{"flag_count": count}
			if count >= domain.FlagThreshold {
				updates["blocked"] = true
				blocked = true
			}
			return tx.Model(&domain.User{}).Where("id = ?", tid).Updates(updates).Error
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have already flagged this user"})
			return
		}
		// Log the report
		logrus.WithFields(logrus.Fields{
			"reporter_id": reporterID, // Reporting user
			"target_id":   targetID,   // Reported user
			"blocked":     blocked,    // Whether the threshold tripped
		}).Info("User flagged")
		c.JSON(http.StatusOK, gin.H{"message": "User flagged", "blocked": blocked})
	}
}
