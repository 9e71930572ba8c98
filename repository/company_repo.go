package repository

import (
	"github.com/fundchain/model"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(company *model.PortfolioCompany) error {
	return r.db.Create(company).Error
}

func (r *CompanyRepository) FindByChainID(chainCompanyID uint64) (*model.PortfolioCompany, error) {
	var company model.PortfolioCompany
	if err := r.db.Where("chain_company_id=?", chainCompanyID).First(&company).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepository) List(activeOnly bool, page, size int) ([]*model.PortfolioCompany, int64, error) {
	var list []*model.PortfolioCompany
	var total int64
	q := r.db.Model(&model.PortfolioCompany{})
	if activeOnly {
		q = q.Where("active=?", true)
	}
	q.Count(&total)
	offset := (page - 1) * size
	if err := q.Order("chain_company_id").Offset(offset).Limit(size).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *CompanyRepository) SetActive(chainCompanyID uint64, active bool) error {
	return r.db.Model(&model.PortfolioCompany{}).Where("chain_company_id=?", chainCompanyID).Update("active", active).Error
}
