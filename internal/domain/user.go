package domain

import "time"

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                                    // Primary key
	Email        string    `gorm:"unique;not null" json:"email"`                            // Unique login email
	Username     string    `gorm:"unique;not null" json:"username"`                         // Display/handle name
	Password     string    `json:"-"`                                                       // Bcrypt hash, empty for OAuth-only accounts
	Role         string    `gorm:"default:user" json:"role"`                                // Role: user or admin
	GoogleID     *string   `gorm:"uniqueIndex" json:"-"`                                    // Google OAuth subject, nil unless linked
	AvatarURL    string    `json:"avatar_url"`                                              // Hosted avatar image URL
	Phone        string    `json:"phone"`                                                   // Contact phone
	Bio          string    `gorm:"size:500" json:"bio"`                                     // Short profile blurb
	ReferralCode string    `gorm:"uniqueIndex;not null" json:"referral_code"`               // Code this user shares with others
	ReferredBy   *uint     `json:"referred_by,omitempty"`                                   // User who referred this one
	TOTPSecret   string    `json:"-"`                                                      // Base32 TOTP secret, empty until 2FA enrollment starts
	TOTPEnabled  bool      `gorm:"default:false" json:"totp_enabled"`                       // Whether 2FA is active
	FlagCount    int       `gorm:"default:0" json:"flag_count"`                             // Distinct reports against this user
	Blocked      bool      `gorm:"default:false;index" json:"blocked"`                      // Blocked after 3 flags or by admin
	CreatedAt    time.Time `json:"created_at"`                                              // Account creation time
	UpdatedAt    time.Time `json:"updated_at"`                                              // Last profile update
	Wallet       Wallet    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"` // One-to-one relationship with Wallet
}
