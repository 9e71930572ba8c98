package model

import (
	"time"

	"gorm.io/gorm"
)

// OnchainEvent is the audit trail: one row per decoded event of every
// transaction the backend submitted.
type OnchainEvent struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	TxHash      string    `gorm:"type:varchar(128);index;not null" json:"tx_hash"`
	BlockNumber uint64    `json:"block_number"`
	Name        string    `gorm:"type:varchar(64);index;not null" json:"name"`
	Payload     string    `gorm:"type:text" json:"payload"` // decoded args as JSON
	CreatedAt   time.Time `json:"created_at"`
}

// AutoMigrate creates or updates every cache table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&KYCSubmission{},
		&Fund{},
		&Investment{},
		&PortfolioCompany{},
		&OnchainEvent{},
	)
}
