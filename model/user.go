package model

import (
	"time"
)

// User is a cached platform account. Role decides which endpoints the
// frontend offers; the chain enforces the real permissions.
type User struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"type:varchar(256);uniqueIndex;not null" json:"email"`
	Name          string    `gorm:"type:varchar(128)" json:"name"`
	Role          string    `gorm:"type:varchar(16);not null;default:lp" json:"role"` // gp / lp / admin
	WalletAddress string    `gorm:"type:varchar(64);index" json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// KYCSubmission tracks one review cycle for a wallet. Approval triggers the
// on-chain identity registration; the row keeps the resulting tx hash.
type KYCSubmission struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	Reference     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	UserID        uint64    `gorm:"index" json:"user_id"`
	WalletAddress string    `gorm:"type:varchar(64);index;not null" json:"wallet_address"`
	Country       uint16    `gorm:"not null" json:"country"`
	Accredited    bool      `json:"accredited"`
	DocumentURI   string    `gorm:"type:varchar(512)" json:"document_uri"`
	Status        string    `gorm:"type:varchar(16);not null;default:pending" json:"status"` // pending / approved / rejected
	RejectReason  string    `gorm:"type:varchar(256)" json:"reject_reason,omitempty"`
	TxHash        string    `gorm:"type:varchar(128)" json:"tx_hash,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
