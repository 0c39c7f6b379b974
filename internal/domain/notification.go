package domain

import "time"

// Notification types
const (
	NotifTransfer     = "transfer"       // Money received from another wallet
	NotifOrderStatus  = "order_status"   // Project order moved to a new status
	NotifPostLike     = "post_like"      // Someone liked your post
	NotifPostComment  = "post_comment"   // Someone commented on your post
	NotifReferral     = "referral_bonus" // A referred signup credited a bonus
	NotifListingSold  = "listing_sold"   // A marketplace listing was marked sold
	NotifAccountState = "account_state"  // Blocked / unblocked by moderation
)

// Notification Model
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                 // Primary key
	RecipientID uint      `gorm:"index;not null" json:"recipient_id"`   // User receiving the notification
	ActorID     *uint     `json:"actor_id,omitempty"`                   // User who triggered it, nil for system events
	Type        string    `gorm:"size:30;index" json:"type"`            // One of the Notif* constants
	TargetID    uint      `json:"target_id,omitempty"`                  // Related entity ID
	TargetType  string    `gorm:"size:20" json:"target_type,omitempty"` // post, order, transaction, user
	Message     string    `json:"message"`                              // Rendered message shown in the UI
	IsRead      bool      `gorm:"default:false;index" json:"is_read"`   // Read marker
	CreatedAt   time.Time `gorm:"index" json:"created_at"`              // When raised
}
