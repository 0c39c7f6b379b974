package domain

import "time"

// FlagThreshold is the number of distinct reports that blocks a user
// or hides a post.
const FlagThreshold = 3

// UserFlag Model, a report filed against a user or a campus post.
// Exactly one of TargetUserID / TargetPostID is set.
type UserFlag struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                             // Primary key
	ReporterID   uint      `gorm:"not null;uniqueIndex:idx_flag_user;uniqueIndex:idx_flag_post" json:"reporter_id"` // Reporting user
	TargetUserID *uint     `gorm:"uniqueIndex:idx_flag_user" json:"target_user_id,omitempty"`                       // Reported user
	TargetPostID *uint     `gorm:"uniqueIndex:idx_flag_post" json:"target_post_id,omitempty"`                       // Reported post
	Reason       string    `gorm:"size:500" json:"reason"`                           // Free-text reason
	CreatedAt    time.Time `json:"created_at"`                                       // When filed
}
