package domain

import "time"

// Marketplace listing statuses
const (
	ListingActive  = "active"  // Visible in the public browse feed
	ListingSold    = "sold"    // Marked sold by the seller
	ListingRemoved = "removed" // Taken down by the seller
)

// Listing Model
type Listing struct {
	ID          uint      `gorm:"primaryKey" json:"id"`               // Primary key
	SellerID    uint      `gorm:"index;not null" json:"seller_id"`    // Owning user
	Title       string    `gorm:"not null" json:"title"`              // Listing title
	Description string    `gorm:"size:2000" json:"description"`       // Item description
	Price       float64   `json:"price"`                              // Asking price
	Category    string    `gorm:"index" json:"category"`              // e.g. books, electronics
	Condition   string    `json:"condition"`                          // e.g. new, used
	ImageURL    string    `json:"image_url"`                          // Hosted listing photo
	Status      string    `gorm:"index;default:active" json:"status"` // active, sold, removed
	CreatedAt   time.Time `json:"created_at"`                         // When listed
	UpdatedAt   time.Time `json:"updated_at"`                         // Last change
}
