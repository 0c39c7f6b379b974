package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing
	"time"     // Deadline parsing

	"studenthub/internal/domain" // Importing domain models
	"studenthub/internal/utils"  // Reference generation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CreateProjectRequest represents a new project order
type CreateProjectRequest struct {
	Title       string  `json:"title" binding:"required"`       // Project title
	Description string  `json:"description" binding:"required"` // What needs doing
	Category    string  `json:"category" binding:"required"`    // e.g. web, mobile, report
	Budget      float64 `json:"budget" binding:"required,gt=0"` // Offered budget
	Deadline    string  `json:"deadline"`                       // Optional RFC 3339 date
}

// UpdateProjectRequest carries edits to a pending order
type UpdateProjectRequest struct {
	Title       *string  `json:"title"`       // New title, optional
	Description *string  `json:"description"` // New description, optional
	Category    *string  `json:"category"`    // New category, optional
	Budget      *float64 `json:"budget"`      // New budget, optional
	Deadline    *string  `json:"deadline"`    // New deadline, optional
}

// loadOwnProject fetches a project order by path ID and checks it
// belongs to the caller, writing the error response itself on failure
func loadOwnProject(c *gin.Context, db *gorm.DB, userID uint) (*domain.ProjectOrder, bool) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return nil, false
	}
	var order domain.ProjectOrder
	if err := db.First(&order, orderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return nil, false
	}
	// Ownership check before any mutation
	if order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return nil, false
	}
	return &order, true
}

// CreateProjectHandler submits a new project order in pending status
func CreateProjectHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateProjectRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		order := domain.ProjectOrder{
			UserID:      userID,                    // Ordering user
			Title:       req.Title,                 // Project title
			Description: req.Description,           // Description
			Category:    req.Category,              // Category
			Budget:      req.Budget,                // Offered budget
			Status:      domain.ProjectPending,     // New orders start pending
			Reference:   utils.NewReference("PRJ"), // Order reference
		}
		// Parse the optional deadline
		if req.Deadline != "" {
			d, err := time.Parse(time.RFC3339, req.Deadline)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Deadline must be an RFC 3339 timestamp"})
				return
			}
			order.Deadline = &d
		}
		if err := db.Create(&order).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create project order") // Log failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
			return
		}
		// Log the submission
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,          // User ID
			"order_id":  order.ID,        // New order ID
			"reference": order.Reference, // Order reference
		}).Info("Project order submitted")
		c.JSON(http.StatusCreated, gin.H{"project": order})
	}
}

// ListProjectsHandler returns the caller's project orders, newest first
func ListProjectsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize, offset := pageParams(c) // Pagination parameters
		query := db.Model(&domain.ProjectOrder{}).Where("user_id = ?", userID)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status) // Filter by status
		}
		var total int64 // Total order count
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count projects"})
			return
		}
		var orders []domain.ProjectOrder // Slice to hold orders
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&orders).Error; err != nil {
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

// GetProjectHandler returns one of the caller's project orders
func GetProjectHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		order, ok := loadOwnProject(c, db, userID)
		if !ok {
			return // Error response already written
		}
		c.JSON(http.StatusOK, gin.H{"project": order})
	}
}

// UpdateProjectHandler edits an order, only while it is still pending
func UpdateProjectHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		order, ok := loadOwnProject(c, db, userID)
		if !ok {
			return // Error response already written
		}
		// Edits are only allowed before review
		if order.Status != domain.ProjectPending {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending projects can be edited"})
			return
		}
		var req UpdateProjectRequest // Bind JSON request to struct
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
		if req.Category != nil {
			updates["category"] = *req.Category
		}
		if req.Budget != nil {
			if *req.Budget <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Budget must be positive"})
				return
			}
			updates["budget"] = *req.Budget
		}
		if req.Deadline != nil {
			d, err := time.Parse(time.RFC3339, *req.Deadline)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Deadline must be an RFC 3339 timestamp"})
				return
			}
			updates["deadline"] = d
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}
		if err := db.Model(order).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"project": order})
	}
}

// CancelProjectHandler withdraws a pending order
func CancelProjectHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		order, ok := loadOwnProject(c, db, userID)
		if !ok {
			return // Error response already written
		}
		// Once reviewed, the order is out of the owner's hands
		if order.Status != domain.ProjectPending {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending projects can be cancelled"})
			return
		}
		if err := db.Model(order).Update("status", domain.ProjectCancelled).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel project"})
			return
		}
		// Log the cancellation
		logrus.WithFields(logrus.Fields{
			"user_id":  userID,   // User ID
			"order_id": order.ID, // Cancelled order
		}).Info("Project order cancelled")
		c.JSON(http.StatusOK, gin.H{"message": "Project cancelled"})
	}
}
