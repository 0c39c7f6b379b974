package domain

import "time"

// Project order statuses
const (
	ProjectPending    = "pending"     // Submitted, waiting for review
	ProjectApproved   = "approved"    // Accepted by an admin
	ProjectRejected   = "rejected"    // Declined by an admin
	ProjectInProgress = "in_progress" // Work started
	ProjectDelivered  = "delivered"   // Work handed over
	ProjectCancelled  = "cancelled"   // Withdrawn by the owner while pending
)

// ProjectOrder Model
type ProjectOrder struct {
	ID          uint       `gorm:"primaryKey" json:"id"`                  // Primary key
	UserID      uint       `gorm:"index;not null" json:"user_id"`         // Ordering user
	Title       string     `gorm:"not null" json:"title"`                 // Project title
	Description string     `gorm:"size:2000" json:"description"`          // What the student needs done
	Category    string     `gorm:"index" json:"category"`                 // e.g. web, mobile, report
	Budget      float64    `json:"budget"`                                // Offered budget
	Deadline    *time.Time `json:"deadline,omitempty"`                    // Requested completion date
	Status      string     `gorm:"index;default:pending" json:"status"`   // Lifecycle status
	Reference   string     `gorm:"uniqueIndex;not null" json:"reference"` // Order reference shown to the user
	AdminNote   string     `json:"admin_note,omitempty"`                  // Reviewer note, set on reject
	CreatedAt   time.Time  `json:"created_at"`                            // Submission time
	UpdatedAt   time.Time  `json:"updated_at"`                            // Last change
}
