package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing
	"strings"  // Kind normalization

	"studenthub/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// AddPaymentMethodRequest represents a saved payment method
type AddPaymentMethodRequest struct {
	Kind   string `json:"kind" binding:"required"`  // card, bank or upi
	Label  string `json:"label" binding:"required"` // User-facing name
	Masked string `json:"masked"`                   // Masked detail, e.g. "**** 4242"
}

// validMethodKinds are the payment method kinds the checkout supports
var validMethodKinds = map[string]bool{"card": true, "bank": true, "upi": true}

// ListPaymentMethodsHandler returns the user's saved payment methods
func ListPaymentMethodsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var methods []domain.PaymentMethod
		if err := db.Where("user_id = ?", userID).Order("created_at asc").Find(&methods).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment methods"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"methods": methods})
	}
}

// AddPaymentMethodHandler saves a payment method; the first one a user
// adds becomes the default automatically
func AddPaymentMethodHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req AddPaymentMethodRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		kind := strings.ToLower(req.Kind)
		if !validMethodKinds[kind] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Kind must be card, bank or upi"})
			return
		}
		method := domain.PaymentMethod{
			UserID: userID,     // Owning user
			Kind:   kind,       // Normalized kind
			Label:  req.Label,  // User-facing name
			Masked: req.Masked, // Masked detail
		}
		// Create the method, defaulting it when it is the user's first
		err := db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&domain.PaymentMethod{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
				return err
			}
			method.IsDefault = count == 0 // First method becomes the default
			return tx.Create(&method).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save payment method"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"method": method})
	}
}

// SetDefaultPaymentMethodHandler makes one method the default. The
// clear-then-set pair runs in a single transaction so two concurrent
// calls cannot leave two defaults behind.
func SetDefaultPaymentMethodHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		methodID, err := strconv.Atoi(c.Param("id"))
		if err != nil || methodID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method ID"})
			return
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			// The method must exist and belong to the caller
			var method domain.PaymentMethod
			if err := tx.Where("id = ? AND user_id = ?", methodID, userID).First(&method).Error; err != nil {
				return err
			}
			// Clear any existing default before setting the new one
			if err := tx.Model(&domain.PaymentMethod{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
			return tx.Model(&method).Update("is_default", true).Error
		})
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set default payment method"})
			return
		}
		// Log the default switch
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,   // User ID
			"method_id": methodID, // New default method
		}).Info("Default payment method changed")
		c.JSON(http.StatusOK, gin.H{"message": "Default payment method updated"})
	}
}

// DeletePaymentMethodHandler removes a saved method. Deleting the
// default leaves no default; the user picks a new one explicitly.
func DeletePaymentMethodHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		methodID, err := strconv.Atoi(c.Param("id"))
		if err != nil || methodID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method ID"})
			return
		}
		// Ownership is part of the delete condition
		res := db.Where("id = ? AND user_id = ?", methodID, userID).Delete(&domain.PaymentMethod{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete payment method"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted"})
	}
}
