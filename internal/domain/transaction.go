package domain

// Wallet transaction types
const (
	TxTopup       = "topup"        // Gateway top-up into a wallet
	TxTransferIn  = "transfer_in"  // Received from another wallet
	TxTransferOut = "transfer_out" // Sent to another wallet
	TxBonus       = "bonus"        // Referral bonus credit
)

// Wallet transaction statuses
const (
	TxPending   = "pending"   // Awaiting gateway confirmation
	TxCompleted = "completed" // Settled into the balance
	TxFailed    = "failed"    // Rejected by the gateway
)

// WalletTransaction Model
type WalletTransaction struct {
	ID             uint    `gorm:"primaryKey" json:"id"`                       // Primary key
	WalletID       uint    `gorm:"index;not null" json:"wallet_id"`            // Wallet this entry belongs to
	PeerWalletID   *uint   `json:"peer_wallet_id,omitempty"`                   // Counterparty wallet for transfers
	Amount         float64 `json:"amount"`                                     // Amount of the transaction
	Type           string  `gorm:"index" json:"type"`                          // topup, transfer_in, transfer_out, bonus
	Status         string  `gorm:"index;default:completed" json:"status"`      // pending, completed, failed
	Reference      string  `gorm:"uniqueIndex;not null" json:"reference"`      // Invoice reference shown to the user
	GatewayOrderID string  `gorm:"index" json:"gateway_order_id,omitempty"`    // Gateway order this entry settles, top-ups only
	CreatedAt      int64   `gorm:"autoCreateTime:milli" json:"created_at"`     // Timestamp of creation in milliseconds
}
