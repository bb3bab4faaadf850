package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) FindVariant(ctx context.Context, productID int64, size string) (model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND size = ?", productID, size).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductVariant{}, err
	}
	return v, nil
}

func (r *InventoryGormRepository) FindVariantByID(ctx context.Context, variantID int64) (model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).Where("id = ?", variantID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ProductVariant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ProductVariant{}, err
	}
	return v, nil
}

func (r *InventoryGormRepository) ListVariantsByProduct(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	var items []model.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.ProductVariant{}, err
	}
	return items, nil
}

func (r *InventoryGormRepository) ListVariantsByProducts(ctx context.Context, productIDs []int64) ([]model.ProductVariant, error) {
	if len(productIDs) == 0 {
		return []model.ProductVariant{}, nil
	}
	var items []model.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.ProductVariant{}, err
	}
	return items, nil
}

func (r *InventoryGormRepository) CreateVariant(ctx context.Context, v model.ProductVariant) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		return 0, err
	}
	return v.ID, nil
}

// 在庫が足りるときだけ減らす。
// read-check-writeを分けると同時購入で負になるので、条件付きUPDATE一発で行う。
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ProductVariant{}).
		Where("id = ? AND stock_quantity >= ?", variantID, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *InventoryGormRepository) SetStock(ctx context.Context, variantID int64, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock_quantity", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InventoryGormRepository) CreateTransaction(ctx context.Context, txn model.StockTransaction) error {
	return r.db.WithContext(ctx).Create(&txn).Error
}

func (r *InventoryGormRepository) ListTransactionsByVariant(ctx context.Context, variantID int64, limit int) ([]model.StockTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var items []model.StockTransaction
	err := r.db.WithContext(ctx).
		Where("product_variant_id = ?", variantID).
		Order("id desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.StockTransaction{}, err
	}
	return items, nil
}

func (r *InventoryGormRepository) ListLowStock(ctx context.Context, threshold int64) ([]model.ProductVariant, error) {
	var items []model.ProductVariant
	err := r.db.WithContext(ctx).
		Where("stock_quantity > 0 AND stock_quantity < ?", threshold).
		Order("stock_quantity asc").
		Find(&items).Error
	if err != nil {
		return []model.ProductVariant{}, err
	}
	return items, nil
}
