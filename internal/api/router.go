package api

import (
	"studenthub/internal/config"     // Application configuration
	"studenthub/internal/images"     // Image host client
	"studenthub/internal/middleware" // Auth middleware
	"studenthub/internal/oauth"      // Google ID token verification
	"studenthub/internal/payment"    // Payment gateway client

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// NewRouter wires every route onto a gin engine. cmd/server calls this
// with real collaborators; tests call it with local stand-ins.
func NewRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config,
	gateway *payment.Client, imgs *images.Client, google *oauth.GoogleVerifier) *gin.Engine {

	r := gin.Default() // Gin router instance

	// Auth routes (public)
	auth := r.Group("/auth")
	auth.POST("/register", RegisterHandler(db, rdb, cfg))              // Registration endpoint
	auth.POST("/login", LoginHandler(db, cfg.JWTSecret))               // Login endpoint
	auth.POST("/login/2fa", Login2FAHandler(db, cfg.JWTSecret))        // TOTP step of a 2FA login
	auth.POST("/google", GoogleLoginHandler(db, google, cfg.JWTSecret)) // Google sign-in endpoint

	// Public marketplace browsing
	r.GET("/market", BrowseListingsHandler(db, rdb)) // Browse listings endpoint
	r.GET("/market/:id", GetListingHandler(db))      // Listing detail endpoint

	// Everything below requires a session token
	authed := r.Group("/")
	authed.Use(middleware.JWTAuthMiddleware(db, cfg.JWTSecret))

	// Profile routes
	authed.GET("/me", GetProfileHandler(db))                     // Profile endpoint
	authed.PUT("/me", UpdateProfileHandler(db))                  // Profile update endpoint
	authed.POST("/me/avatar", UploadAvatarHandler(db, imgs))     // Avatar upload endpoint
	authed.POST("/me/2fa/enroll", Enroll2FAHandler(db, cfg))     // 2FA enrollment endpoint
	authed.POST("/me/2fa/verify", Verify2FAHandler(db))          // 2FA activation endpoint
	authed.DELETE("/me/2fa", Disable2FAHandler(db))              // 2FA deactivation endpoint
	authed.POST("/users/:id/flag", FlagUserHandler(db))          // User report endpoint

	// Wallet routes
	wallet := authed.Group("/wallet")
	wallet.GET("", GetWalletHandler(db, rdb))                              // Get wallet endpoint
	wallet.POST("/topup", TopupHandler(db, gateway))                       // Top-up order endpoint
	wallet.POST("/topup/confirm", TopupConfirmHandler(db, rdb, gateway))   // Top-up confirmation endpoint
	wallet.POST("/transfer", TransferHandler(db, rdb))                     // Transfer endpoint
	wallet.GET("/transactions", GetTransactionHistoryHandler(db, rdb))     // Transaction history endpoint
	wallet.GET("/methods", ListPaymentMethodsHandler(db))                  // Payment methods list endpoint
	wallet.POST("/methods", AddPaymentMethodHandler(db))                   // Payment method add endpoint
	wallet.PUT("/methods/:id/default", SetDefaultPaymentMethodHandler(db)) // Default method endpoint
	wallet.DELETE("/methods/:id", DeletePaymentMethodHandler(db))          // Payment method delete endpoint

	// Project order routes
	projects := authed.Group("/projects")
	projects.POST("", CreateProjectHandler(db))              // Project submission endpoint
	projects.GET("", ListProjectsHandler(db))                // Own projects list endpoint
	projects.GET("/:id", GetProjectHandler(db))              // Project detail endpoint
	projects.PUT("/:id", UpdateProjectHandler(db))           // Project edit endpoint
	projects.POST("/:id/cancel", CancelProjectHandler(db))   // Project cancel endpoint

	// Marketplace seller routes
	authed.POST("/market", CreateListingHandler(db, rdb, imgs))     // Listing create endpoint
	authed.PUT("/market/:id", UpdateListingHandler(db, rdb))        // Listing edit endpoint
	authed.POST("/market/:id/sold", MarkListingSoldHandler(db, rdb)) // Listing sold endpoint
	authed.DELETE("/market/:id", DeleteListingHandler(db, rdb))     // Listing removal endpoint

	// Campus feed routes
	campus := authed.Group("/campus")
	campus.GET("/feed", GetFeedHandler(db, rdb))                        // Feed endpoint
	campus.POST("/posts", CreatePostHandler(db, rdb, imgs))             // Post create endpoint
	campus.DELETE("/posts/:id", DeletePostHandler(db, rdb))             // Post delete endpoint
	campus.POST("/posts/:id/like", LikePostHandler(db, rdb))            // Like toggle endpoint
	campus.POST("/posts/:id/comments", CreateCommentHandler(db, rdb))   // Comment create endpoint
	campus.GET("/posts/:id/comments", ListCommentsHandler(db))          // Comment list endpoint
	campus.POST("/posts/:id/flag", FlagPostHandler(db, rdb))            // Post report endpoint

	// Notification routes
	notifs := authed.Group("/notifications")
	notifs.GET("", ListNotificationsHandler(db, rdb))                  // Notification list endpoint
	notifs.POST("/:id/read", MarkNotificationReadHandler(db, rdb))     // Mark-read endpoint
	notifs.POST("/read-all", MarkAllNotificationsReadHandler(db, rdb)) // Mark-all-read endpoint

	// Admin routes (protected, admin only)
	admin := authed.Group("/admin")
	admin.Use(middleware.AdminOnlyMiddleware(db))
	admin.GET("/users", ListUsersHandler(db, rdb))                     // List users endpoint
	admin.GET("/transactions", ListTransactionsHandler(db, rdb))       // List transactions endpoint
	admin.GET("/projects", ListProjectOrdersHandler(db))               // Moderation queue endpoint
	admin.POST("/projects/:id/approve", ApproveProjectHandler(db, rdb)) // Project approval endpoint
	admin.POST("/projects/:id/reject", RejectProjectHandler(db, rdb))  // Project rejection endpoint
	admin.POST("/projects/:id/status", SetProjectStatusHandler(db, rdb)) // Fulfillment status endpoint
	admin.POST("/users/:id/block", BlockUserHandler(db, rdb))          // User block endpoint
	admin.POST("/users/:id/unblock", UnblockUserHandler(db, rdb))      // User unblock endpoint

	return r
}
