package repository

import (
	"github.com/fundchain/model"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email=?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByWallet(address string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("wallet_address=?", address).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type KYCRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) *KYCRepository {
	return &KYCRepository{db: db}
}

func (r *KYCRepository) Create(sub *model.KYCSubmission) error {
	return r.db.Create(sub).Error
}

func (r *KYCRepository) Save(sub *model.KYCSubmission) error {
	return r.db.Save(sub).Error
}

func (r *KYCRepository) FindByReference(reference string) (*model.KYCSubmission, error) {
	var sub model.KYCSubmission
	if err := r.db.Where("reference=?", reference).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *KYCRepository) ListByStatus(status string, page, size int) ([]*model.KYCSubmission, int64, error) {
	var list []*model.KYCSubmission
	var total int64
	r.db.Model(&model.KYCSubmission{}).Where("status=?", status).Count(&total)
	offset := (page - 1) * size
	if err := r.db.Where("status=?", status).Order("id").Offset(offset).Limit(size).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
