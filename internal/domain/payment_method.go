package domain

import "time"

// PaymentMethod Model
type PaymentMethod struct {
	ID        uint      `gorm:"primaryKey" json:"id"`             // Primary key
	UserID    uint      `gorm:"index;not null" json:"user_id"`    // Owning user
	Kind      string    `gorm:"not null" json:"kind"`             // card, bank or upi
	Label     string    `gorm:"not null" json:"label"`            // User-facing name, e.g. "Campus debit card"
	Masked    string    `json:"masked"`                           // Masked detail, e.g. "**** 4242"
	IsDefault bool      `gorm:"default:false" json:"is_default"`  // At most one default per user
	CreatedAt time.Time `json:"created_at"`                       // When the method was added
}
