package model

import (
	"time"
)

// Fund mirrors a factory fund. The chain is authoritative; rows here serve
// listings and joins against off-chain data. Amounts are decimal strings.
type Fund struct {
	ID                uint64    `gorm:"primaryKey" json:"id"`
	ChainFundID       uint64    `gorm:"uniqueIndex;not null" json:"chain_fund_id"`
	LedgerFundID      *uint64   `gorm:"index" json:"ledger_fund_id,omitempty"`
	TokenAddress      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"token_address"`
	GPAddress         string    `gorm:"type:varchar(64);index;not null" json:"gp_address"`
	Name              string    `gorm:"type:varchar(128);not null" json:"name"`
	Symbol            string    `gorm:"type:varchar(16);not null" json:"symbol"`
	TargetAmount      string    `gorm:"type:varchar(80);not null" json:"target_amount"`
	MinimumInvestment string    `gorm:"type:varchar(80);not null" json:"minimum_investment"`
	Active            bool      `gorm:"not null;default:true" json:"active"`
	TxHash            string    `gorm:"type:varchar(128)" json:"tx_hash"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Investment mirrors a ledger investment record.
type Investment struct {
	ID                uint64    `gorm:"primaryKey" json:"id"`
	LedgerFundID      uint64    `gorm:"index;not null" json:"ledger_fund_id"`
	ChainInvestmentID uint64    `gorm:"index;not null" json:"chain_investment_id"`
	InvestorAddress   string    `gorm:"type:varchar(64);index;not null" json:"investor_address"`
	Amount            string    `gorm:"type:varchar(80);not null" json:"amount"`
	TokenAmount       string    `gorm:"type:varchar(80);not null" json:"token_amount"`
	Status            string    `gorm:"type:varchar(16);not null;default:Pending" json:"status"`
	ExternalRef       string    `gorm:"type:varchar(128)" json:"external_ref,omitempty"`
	TxHash            string    `gorm:"type:varchar(128)" json:"tx_hash"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
