package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"studenthub/internal/domain"  // Importing domain models
	"studenthub/internal/payment" // Payment gateway client
	"studenthub/internal/utils"   // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// TopupRequest represents a top-up order request
type TopupRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"` // Top-up amount
}

// TopupConfirmRequest carries the gateway's signed payment result
type TopupConfirmRequest struct {
	OrderID   string `json:"order_id" binding:"required"`   // Gateway order ID
	PaymentID string `json:"payment_id" binding:"required"` // Gateway payment ID
	Signature string `json:"signature" binding:"required"`  // HMAC over order|payment
}

// TransferRequest represents a transfer request
type TransferRequest struct {
	ToUsername string  `json:"to_username" binding:"required"` // Target username
	Amount     float64 `json:"amount" binding:"required,gt=0"` // Transfer amount
}

// GetWalletHandler returns wallet info for the authenticated user
func GetWalletHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                               // Context for Redis operations
		cacheKey := "wallet:user:" + strconv.Itoa(int(userID))    // Cache key for wallet
		var wallet domain.Wallet                                  // Wallet struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &wallet) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, wallet, 60*time.Second)  // Cache the wallet for 60 seconds
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": false}) // Return wallet info
	}
}

// TopupHandler opens a gateway order for a wallet top-up and records a
// pending transaction the confirm step settles
func TopupHandler(db *gorm.DB, gateway *payment.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TopupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		var wallet domain.Wallet // Find user's wallet
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		reference := utils.NewReference("TOP") // Invoice reference for this top-up
		order, err := gateway.CreateOrder(c.Request.Context(), req.Amount, wallet.Currency, reference)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"amount":  req.Amount,  // Top-up amount
				"error":   err.Error(), // Error message
			}).Error("Gateway order failed") // Log gateway failure
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable"})
			return
		}
		// Record the pending transaction the confirm step will settle
		t := domain.WalletTransaction{
			WalletID:       wallet.ID,        // Wallet being topped up
			Amount:         req.Amount,       // Top-up amount
			Type:           domain.TxTopup,   // Transaction type
			Status:         domain.TxPending, // Awaiting confirmation
			Reference:      reference,        // Invoice reference
			GatewayOrderID: order.ID,         // Gateway order to match on confirm
		}
		if err := db.Create(&t).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record top-up"})
			return
		}
		// The client opens the checkout with these parameters
		c.JSON(http.StatusCreated, gin.H{
			"order_id":  order.ID,      // Gateway order ID
			"amount":    order.Amount,  // Order amount
			"currency":  order.Currency, // Currency code
			"reference": reference,     // Invoice reference
			"key":       gateway.Key(), // Public gateway key for the checkout client
		})
	}
}

// TopupConfirmHandler verifies the gateway signature and credits the
// wallet. Confirming the same order twice is a no-op.
func TopupConfirmHandler(db *gorm.DB, rdb *redis.Client, gateway *payment.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TopupConfirmRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var wallet domain.Wallet // Find user's wallet
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		var t domain.WalletTransaction // Find the pending top-up for this order
		if err := db.Where("gateway_order_id = ? AND wallet_id = ?", req.OrderID, wallet.ID).First(&t).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Top-up order not found"})
			return
		}
		// A second confirm of a settled order succeeds without crediting again
		if t.Status == domain.TxCompleted {
			c.JSON(http.StatusOK, gin.H{"message": "Top-up already confirmed", "reference": t.Reference})
			return
		}
		// Reject forged confirmations; the pending row stays pending
		if !gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,      // User ID
				"order_id": req.OrderID, // Gateway order ID
			}).Warn("Top-up signature rejected") // Log rejected signature
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
			return
		}
		// Credit the balance and settle the transaction atomically. The
		// status guard keeps a racing double-confirm from crediting twice.
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&domain.WalletTransaction{}).
				Where("id = ? AND status = ?", t.ID, domain.TxPending).
				Update("status", domain.TxCompleted)
			if res.Error != nil {
				return res.Error // Return error to rollback
			}
			if res.RowsAffected == 0 {
				return nil // Another confirm settled it first
			}
			return tx.Model(&wallet).Update("balance", gorm.Expr("balance + ?", t.Amount)).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":  userID,      // User ID
				"order_id": req.OrderID, // Gateway order ID
				"error":    err.Error(), // Error message
			}).Error("Top-up failed") // Log top-up failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Top-up failed"})
			return
		}
		// Log successful top-up
		logrus.WithFields(logrus.Fields{
			"user_id":   userID,                          // User ID
			"amount":    t.Amount,                        // Top-up amount
			"type":      domain.TxTopup,                  // Transaction type
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Top-up transaction") // Log top-up success
		// Invalidate wallet and transaction history cache
		invalidateWallet(context.Background(), rdb, userID)
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Top-up successful", "reference": t.Reference})
	}
}

// TransferHandler allows a user to transfer funds to another user's wallet
func TransferHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		fromUserID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TransferRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var toUser domain.User // Find target user
		if err := db.Where("username = ?", req.ToUsername).First(&toUser).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
			return
		}
		// Prevent transferring to self
		if toUser.ID == fromUserID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot transfer to yourself"})
			return
		}
		var fromWallet, toWallet domain.Wallet // Find wallets
		if err := db.Where("user_id = ?", fromUserID).First(&fromWallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sender wallet not found"})
			return
		}
		if err := db.Where("user_id = ?", toUser.ID).First(&toWallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient wallet not found"})
			return
		}
		// Check sufficient funds
		if fromWallet.Balance < req.Amount {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
			return
		}
		reference := utils.NewReference("TRF") // Shared reference base for the pair of entries
		// Atomic transfer
		err := db.Transaction(func(tx *gorm.DB) error {
			// Deduct from sender
			if err := tx.Model(&fromWallet).Update("balance", gorm.Expr("balance - ?", req.Amount)).Error; err != nil {
				return err // Return error to rollback
			}
			// Add to recipient
			if err := tx.Model(&toWallet).Update("balance", gorm.Expr("balance + ?", req.Amount)).Error; err != nil {
				return err // Return error to rollback
			}
			// Record both sides of the transfer
			out := domain.WalletTransaction{
				WalletID:     fromWallet.ID,        // Sender wallet
				PeerWalletID: &toWallet.ID,         // Recipient wallet
				Amount:       req.Amount,           // Transfer amount
				Type:         domain.TxTransferOut, // Transaction type
				Status:       domain.TxCompleted,   // Settled immediately
				Reference:    reference + "-OUT",   // Sender-side reference
			}
			if err := tx.Create(&out).Error; err != nil {
				return err // Return error to rollback
			}
			in := domain.WalletTransaction{
				WalletID:     toWallet.ID,         // Recipient wallet
				PeerWalletID: &fromWallet.ID,      // Sender wallet
				Amount:       req.Amount,          // Transfer amount
				Type:         domain.TxTransferIn, // Transaction type
				Status:       domain.TxCompleted,  // Settled immediately
				Reference:    reference + "-IN",   // Recipient-side reference
			}
			if err := tx.Create(&in).Error; err != nil {
				return err // Return error to rollback
			}
			// Tell the recipient about the credit
			return notify(tx, domain.Notification{
				RecipientID: toUser.ID,                    // Recipient hears about it
				ActorID:     &fromUserID,                  // Sender triggered it
				Type:        domain.NotifTransfer,         // Notification type
				TargetID:    in.ID,                        // Their side of the transfer
				TargetType:  "transaction",                // Target kind
				Message:     "You received a transfer",    // Rendered message
			})
		})
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"from_user_id": fromUserID,  // Sender user ID
				"to_user_id":   toUser.ID,   // Recipient user ID
				"amount":       req.Amount,  // Transfer amount
				"error":        err.Error(), // Error message
			}).Error("Transfer failed") // Log transfer failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Transfer failed"})
			return
		}
		// Log successful transfer
		logrus.WithFields(logrus.Fields{
			"from_user_id": fromUserID,                      // Sender user ID
			"to_user_id":   toUser.ID,                       // Recipient user ID
			"amount":       req.Amount,                      // Transfer amount
			"type":         "transfer",                      // Transaction type
			"timestamp":    time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Transfer transaction") // Log transfer success
		// Invalidate wallet, history and notification caches for both users
		ctx := context.Background()
		invalidateWallet(ctx, rdb, fromUserID)
		invalidateWallet(ctx, rdb, toUser.ID)
		invalidateNotifications(ctx, rdb, toUser.ID)
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Transfer successful"})
	}
}

// GetTransactionHistoryHandler returns all transactions for the authenticated user's wallet
func GetTransactionHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var wallet domain.Wallet // Get user's wallet
		if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		page, pageSize, offset := pageParams(c) // Pagination parameters
		// Redis cache key
		cacheKey := "txhistory:user:" + strconv.Itoa(int(userID)) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Transactions []domain.WalletTransaction `json:"transactions"` // List of transactions
			Page         int                        `json:"page"`         // Current page
			PageSize     int                        `json:"page_size"`    // Page size
			Total        int64                      `json:"total"`        // Total transactions
			TotalPages   int                        `json:"total_pages"`  // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,
			})
			return
		}
		var total int64 // Total count of transactions
		// Count total transactions for pagination
		if err := db.Model(&domain.WalletTransaction{}).
			Where("wallet_id = ?", wallet.ID).
			Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var transactions []domain.WalletTransaction // Slice to hold transactions
		// Fetch paginated transactions
		if err := db.Where("wallet_id = ?", wallet.ID).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&transactions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		resp := gin.H{
			"transactions": transactions,                  // List of transactions
			"page":         page,                          // Current page
			"page_size":    pageSize,                      // Page size
			"total":        total,                         // Total transactions
			"total_pages":  totalPages(total, pageSize),   // Total pages
			"cached":       false,                         // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return transaction history
	}
}
