package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type DiscountGormRepository struct {
	db *gorm.DB
}

func NewDiscountGormRepository(db *gorm.DB) *DiscountGormRepository {
	return &DiscountGormRepository{db: db}
}

func (r *DiscountGormRepository) FindByCode(ctx context.Context, code string) (model.DiscountCode, bool, error) {
	var d model.DiscountCode
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DiscountCode{}, false, nil
	}
	if err != nil {
		return model.DiscountCode{}, false, err
	}
	return d, true, nil
}

func (r *DiscountGormRepository) FindByID(ctx context.Context, discountCodeID int64) (model.DiscountCode, error) {
	var d model.DiscountCode
	err := r.db.WithContext(ctx).Where("id = ?", discountCodeID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DiscountCode{}, repo.ErrNotFound
	}
	if err != nil {
		return model.DiscountCode{}, err
	}
	return d, nil
}

func (r *DiscountGormRepository) HasUsage(ctx context.Context, discountCodeID int64, customerEmail string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DiscountCodeUsage{}).
		Where("discount_code_id = ? AND customer_email = ?", discountCodeID, customerEmail).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DiscountGormRepository) CreateUsage(ctx context.Context, usage model.DiscountCodeUsage) error {
	return r.db.WithContext(ctx).Create(&usage).Error
}
