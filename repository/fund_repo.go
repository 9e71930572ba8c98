package repository

import (
	"github.com/fundchain/model"
	"gorm.io/gorm"
)

type FundRepository struct {
	db *gorm.DB
}

func NewFundRepository(db *gorm.DB) *FundRepository {
	return &FundRepository{db: db}
}

func (r *FundRepository) Create(fund *model.Fund) error {
	return r.db.Create(fund).Error
}

func (r *FundRepository) Save(fund *model.Fund) error {
	return r.db.Save(fund).Error
}

func (r *FundRepository) FindByChainID(chainFundID uint64) (*model.Fund, error) {
	var fund model.Fund
	if err := r.db.Where("chain_fund_id=?", chainFundID).First(&fund).Error; err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *FundRepository) FindByToken(tokenAddress string) (*model.Fund, error) {
	var fund model.Fund
	if err := r.db.Where("token_address=?", tokenAddress).First(&fund).Error; err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *FundRepository) List(activeOnly bool, page, size int) ([]*model.Fund, int64, error) {
	var list []*model.Fund
	var total int64
	q := r.db.Model(&model.Fund{})
	if activeOnly {
		q = q.Where("active=?", true)
	}
	q.Count(&total)
	offset := (page - 1) * size
	if err := q.Order("chain_fund_id").Offset(offset).Limit(size).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *FundRepository) SetActive(chainFundID uint64, active bool) error {
	return r.db.Model(&model.Fund{}).Where("chain_fund_id=?", chainFundID).Update("active", active).Error
}

func (r *FundRepository) SetLedgerFundID(chainFundID, ledgerFundID uint64) error {
	return r.db.Model(&model.Fund{}).Where("chain_fund_id=?", chainFundID).Update("ledger_fund_id", ledgerFundID).Error
}

type InvestmentRepository struct {
	db *gorm.DB
}

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(inv *model.Investment) error {
	return r.db.Create(inv).Error
}

func (r *InvestmentRepository) Find(ledgerFundID, chainInvestmentID uint64) (*model.Investment, error) {
	var inv model.Investment
	if err := r.db.Where("ledger_fund_id=? AND chain_investment_id=?", ledgerFundID, chainInvestmentID).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvestmentRepository) ListByFund(ledgerFundID uint64, page, size int) ([]*model.Investment, int64, error) {
	var list []*model.Investment
	var total int64
	r.db.Model(&model.Investment{}).Where("ledger_fund_id=?", ledgerFundID).Count(&total)
	offset := (page - 1) * size
	if err := r.db.Where("ledger_fund_id=?", ledgerFundID).Order("chain_investment_id").Offset(offset).Limit(size).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *InvestmentRepository) ListByInvestor(investor string, page, size int) ([]*model.Investment, int64, error) {
	var list []*model.Investment
	var total int64
	r.db.Model(&model.Investment{}).Where("investor_address=?", investor).Count(&total)
	offset := (page - 1) * size
	if err := r.db.Where("investor_address=?", investor).Order("id").Offset(offset).Limit(size).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *InvestmentRepository) UpdateStatus(ledgerFundID, chainInvestmentID uint64, status, txHash string) error {
	return r.db.Model(&model.Investment{}).
		Where("ledger_fund_id=? AND chain_investment_id=?", ledgerFundID, chainInvestmentID).
		Updates(map[string]any{"status": status, "tx_hash": txHash}).Error
}
