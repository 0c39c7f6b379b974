package domain

import "time"

// CampusPost Model
type CampusPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`              // Primary key
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`   // Posting user
	Body      string    `gorm:"size:2000;not null" json:"body"`    // Post text
	ImageURL  string    `json:"image_url,omitempty"`               // Optional hosted photo
	LikeCount int       `gorm:"default:0" json:"like_count"`       // Denormalized like counter
	FlagCount int       `gorm:"default:0" json:"flag_count"`       // Distinct reports against this post
	Hidden    bool      `gorm:"default:false;index" json:"hidden"` // Hidden after 3 flags
	CreatedAt time.Time `json:"created_at"`                        // When posted
}

// PostComment Model
type PostComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`            // Primary key
	PostID    uint      `gorm:"index;not null" json:"post_id"`   // Commented post
	AuthorID  uint      `gorm:"index;not null" json:"author_id"` // Commenting user
	Body      string    `gorm:"size:1000;not null" json:"body"`  // Comment text
	CreatedAt time.Time `json:"created_at"`                      // When written
}

// PostLike Model, one row per (post, user) pair
type PostLike struct {
	ID     uint `gorm:"primaryKey" json:"id"`                            // Primary key
	PostID uint `gorm:"uniqueIndex:idx_post_like;not null" json:"post_id"` // Liked post
	UserID uint `gorm:"uniqueIndex:idx_post_like;not null" json:"user_id"` // Liking user
}
