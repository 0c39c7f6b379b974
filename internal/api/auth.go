package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strconv"  // Username deduplication suffixes
	"strings"  // String manipulation

	"studenthub/internal/config" // Application configuration
	"studenthub/internal/domain" // Importing domain models
	"studenthub/internal/oauth"  // Google ID token verification
	"studenthub/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
	"gorm.io/gorm"                 // GORM ORM library
)

// Request and Response structs
type RegisterRequest struct {
	Email        string `json:"email" binding:"required"`    // Email must be provided
	Username     string `json:"username" binding:"required"` // Username must be provided
	Password     string `json:"password" binding:"required"` // Password must be provided
	ReferralCode string `json:"referral_code"`               // Optional referrer code
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for the second step of a 2FA login
type Login2FARequest struct {
	Token string `json:"token" binding:"required"` // Pending token from the password step
	Code  string `json:"code" binding:"required"`  // Current TOTP code
}

// Request struct for Google sign-in
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"` // Google ID token from the client
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
var usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{2,19}$`)

// isValidEmail checks the email has a plausible mailbox@host shape
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// isValidUsername checks the username is 3-20 chars, letters first
func isValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// isValidPassword checks the password length is between 8 and 72 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 72 // Bcrypt caps input at 72 bytes
}

// RegisterHandler creates a user with a wallet and referral code, and
// credits the referrer when a valid code was supplied
func RegisterHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate email, username and password
		if !isValidEmail(req.Email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		if !isValidUsername(req.Username) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-20 letters, digits or underscores, starting with a letter"})
			return
		}
		if !isValidPassword(req.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-72 characters"})
			return
		}
		// Resolve the referrer before opening the transaction
		var referrer *domain.User
		if req.ReferralCode != "" {
			var ref domain.User
			if err := db.Where("referral_code = ?", strings.ToUpper(req.ReferralCode)).First(&ref).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown referral code"})
				return
			}
			referrer = &ref
		}
		// Hash the password and generate this user's own referral code
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		code, err := utils.NewReferralCode()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate referral code"})
			return
		}
		user := domain.User{
			Email:        strings.ToLower(req.Email),    // Lowercase email to ensure uniqueness
			Username:     strings.ToLower(req.Username), // Lowercase username to ensure uniqueness
			Password:     string(hash),                  // Bcrypt hash
			ReferralCode: code,                          // Shareable code
		}
		if referrer != nil {
			user.ReferredBy = &referrer.ID // Record who referred this signup
		}
		// Create the user, wallet and referral bonus together
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err // Duplicate email/username rolls back here
			}
			wallet := domain.Wallet{UserID: user.ID, Balance: 0}
			if err := tx.Create(&wallet).Error; err != nil {
				return err // Return error to rollback
			}
			if referrer == nil {
				return nil // No bonus to credit
			}
			// Credit the referrer's wallet and record the bonus
			var refWallet domain.Wallet
			if err := tx.Where("user_id = ?", referrer.ID).First(&refWallet).Error; err != nil {
				return err
			}
			if err := tx.Model(&refWallet).Update("balance", gorm.Expr("balance + ?", cfg.ReferralBonus)).Error; err != nil {
				return err
			}
			t := domain.WalletTransaction{
				WalletID:  refWallet.ID,                 // Referrer's wallet
				Amount:    cfg.ReferralBonus,            // Bonus amount
				Type:      domain.TxBonus,               // Transaction type
				Status:    domain.TxCompleted,           // Credited immediately
				Reference: utils.NewReference("BON"),    // Invoice reference
			}
			if err := tx.Create(&t).Error; err != nil {
				return err // Return error to rollback
			}
			return notify(tx, domain.Notification{
				RecipientID: referrer.ID,                                           // Referrer hears about it
				ActorID:     &user.ID,                                              // New signup triggered it
				Type:        domain.NotifReferral,                                  // Notification type
				TargetID:    t.ID,                                                  // Bonus transaction
				TargetType:  "transaction",                                         // Target kind
				Message:     user.Username + " joined with your referral code",     // Rendered message
			})
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email or username already exists"})
			return
		}
		// The bonus credit changed the referrer's cached wallet views
		if referrer != nil {
			ctx := context.Background()
			invalidateWallet(ctx, rdb, referrer.ID)
			invalidateNotifications(ctx, rdb, referrer.ID)
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,            // New user ID
			"username": user.Username,      // Username
			"referred": referrer != nil,    // Whether a referral applied
		}).Info("User registered")
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "referral_code": user.ReferralCode})
	}
}

// issueToken finishes a successful credential check: 2FA-enabled users
// get a short-lived pending token, everyone else a session token
func issueToken(c *gin.Context, user *domain.User, jwtSecret string) {
	if user.TOTPEnabled {
		token, err := utils.Generate2FAJWT(user.ID, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// The client must follow up on /auth/login/2fa with a TOTP code
		c.JSON(http.StatusOK, gin.H{"two_factor_required": true, "token": token})
		return
	}
	token, err := utils.GenerateJWT(user.ID, jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	// Return the token in the response
	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

// LoginHandler authenticates a user and returns a JWT token, or a
// 2FA-pending token when TOTP is enabled
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// OAuth-only accounts have no password to check
		if user.Password == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Blocked accounts cannot start sessions
		if user.Blocked {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
			return
		}
		issueToken(c, &user, jwtSecret)
	}
}

// Login2FAHandler exchanges a pending token plus a valid TOTP code for
// a session token
func Login2FAHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Login2FARequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		claims, err := utils.ParseJWT(req.Token, jwtSecret)
		if err != nil || claims.Stage != utils.Stage2FA {
			// Only a pending token from the password step is accepted here
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		var user domain.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if user.Blocked {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
			return
		}
		if !user.TOTPEnabled || !utils.VerifyTOTP(user.TOTPSecret, req.Code, timeNow()) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication code"})
			return
		}
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// GoogleLoginHandler signs a user in with a verified Google ID token,
// creating or linking the account as needed
func GoogleLoginHandler(db *gorm.DB, verifier *oauth.GoogleVerifier, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GoogleLoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		id, err := verifier.Verify(c.Request.Context(), req.IDToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Google sign-in failed"})
			return
		}
		var user domain.User
		// Existing linked account wins
		err = db.Where("google_id = ?", id.Subject).First(&user).Error
		if err == gorm.ErrRecordNotFound {
			// Fall back to the email: link an existing password account
			err = db.Where("email = ?", strings.ToLower(id.Email)).First(&user).Error
			if err == nil {
				if e := db.Model(&user).Update("google_id", id.Subject).Error; e != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to link account"})
					return
				}
			} else if err == gorm.ErrRecordNotFound {
				// First sign-in: create the account and wallet
				user, err = createGoogleUser(db, id)
				if err != nil {
					logrus.WithFields(logrus.Fields{
						"email": id.Email,    // Google account email
						"error": err.Error(), // Error message
					}).Error("Failed to create Google user")
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
					return
				}
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
				return
			}
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up account"})
			return
		}
		if user.Blocked {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is blocked"})
			return
		}
		issueToken(c, &user, jwtSecret)
	}
}

// createGoogleUser provisions a new account from a verified identity.
// The username is derived from the email local part and deduplicated
// with a numeric suffix.
func createGoogleUser(db *gorm.DB, id *oauth.Identity) (domain.User, error) {
	base := strings.ToLower(strings.SplitN(id.Email, "@", 2)[0])
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return -1 // Drop anything the username rules reject
	}, base)
	if base == "" || base[0] >= '0' && base[0] <= '9' {
		base = "student" + base // Usernames must start with a letter
	}
	code, err := utils.NewReferralCode()
	if err != nil {
		return domain.User{}, err
	}
	sub := id.Subject
	user := domain.User{
		Email:        strings.ToLower(id.Email), // Verified Google email
		Username:     base,                      // Derived handle
		GoogleID:     &sub,                      // Link to the Google subject
		AvatarURL:    id.Picture,                // Google avatar as a starting point
		ReferralCode: code,                      // Shareable code
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		// Retry the username with suffixes until it is free
		for i := 0; i < 5; i++ {
			if i > 0 {
				user.Username = base + strconv.Itoa(i)
			}
			var count int64
			if err := tx.Model(&domain.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				break
			}
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		wallet := domain.Wallet{UserID: user.ID, Balance: 0}
		return tx.Create(&wallet).Error
	})
	return user, err
}
