package model

import (
	"time"
)

// PortfolioCompany mirrors a registered portfolio company.
type PortfolioCompany struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	ChainCompanyID uint64    `gorm:"uniqueIndex;not null" json:"chain_company_id"`
	Name           string    `gorm:"type:varchar(128);not null" json:"name"`
	Industry       string    `gorm:"type:varchar(64)" json:"industry"`
	Country        string    `gorm:"type:varchar(64)" json:"country"`
	FoundedYear    int       `json:"founded_year"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	TxHash         string    `gorm:"type:varchar(128)" json:"tx_hash"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
