package repository

import (
	"context"

	"app/internal/domain/model"
)

type DiscountRepository interface {
	//codeは大文字化済みで渡すこと
	FindByCode(ctx context.Context, code string) (model.DiscountCode, bool, error)
	FindByID(ctx context.Context, discountCodeID int64) (model.DiscountCode, error)

	//(コード, 顧客メール)の使用済み判定
	HasUsage(ctx context.Context, discountCodeID int64, customerEmail string) (bool, error)
	CreateUsage(ctx context.Context, usage model.DiscountCodeUsage) error
}
