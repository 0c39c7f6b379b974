package api

import (
	"net/http" // HTTP status codes

	"studenthub/internal/config" // Application configuration
	"studenthub/internal/domain" // Importing domain models
	"studenthub/internal/utils"  // TOTP utilities

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for confirming or disabling 2FA
type TOTPCodeRequest struct {
	Code string `json:"code" binding:"required"` // Current TOTP code
}

// Enroll2FAHandler generates a TOTP secret for the user and returns
// the otpauth URI. 2FA only turns on once a code is verified.
func Enroll2FAHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
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
		if user.TOTPEnabled {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Two-factor authentication is already enabled"})
			return
		}
		secret, err := utils.GenerateTOTPSecret()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate secret"})
			return
		}
		// Store the secret but keep 2FA off until a code is verified
		if err := db.Model(&user).Updates(map[string]any{"totp_secret": secret, "totp_enabled": false}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store secret"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"secret": secret, // Shown for manual entry
			"uri":    utils.TOTPProvisioningURI(secret, user.Email, cfg.AppName), // QR payload
		})
	}
}

// Verify2FAHandler confirms the first code from the authenticator app
// and switches 2FA on
func Verify2FAHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TOTPCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if user.TOTPSecret == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Two-factor enrollment not started"})
			return
		}
		if !utils.VerifyTOTP(user.TOTPSecret, req.Code, timeNow()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid authentication code"})
			return
		}
		if err := db.Model(&user).Update("totp_enabled", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enable two-factor authentication"})
			return
		}
		// Log 2FA activation
		logrus.WithFields(logrus.Fields{
			"user_id": userID, // User ID
		}).Info("Two-factor authentication enabled")
		c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication enabled"})
	}
}

// Disable2FAHandler turns 2FA off after checking a current code
func Disable2FAHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TOTPCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User
		if err := db.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if !user.TOTPEnabled {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Two-factor authentication is not enabled"})
			return
		}
		// A valid current code is required to switch 2FA off
		if !utils.VerifyTOTP(user.TOTPSecret, req.Code, timeNow()) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid authentication code"})
			return
		}
		if err := db.Model(&user).Updates(map[string]any{"totp_secret": "", "totp_enabled": false}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable two-factor authentication"})
			return
		}
		// Log 2FA deactivation
		logrus.WithFields(logrus.Fields{
			"user_id": userID, // User ID
		}).Info("Two-factor authentication disabled")
		c.JSON(http.StatusOK, gin.H{"message": "Two-factor authentication disabled"})
	}
}
