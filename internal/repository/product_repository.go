package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

type ProductRepository interface {
	//公開カタログ用（is_active=trueのみ）
	ListActive(ctx context.Context) ([]model.Product, error)

	//管理画面用（非アクティブ含む全件）
	ListAll(ctx context.Context) ([]model.Product, error)

	FindByID(ctx context.Context, productID int64) (model.Product, error)
	Create(ctx context.Context, p model.Product) (int64, error)
	Update(ctx context.Context, p model.Product) error

	//注文実績のある商品はソフトデリート
	Deactivate(ctx context.Context, productID int64) error

	//注文実績のない商品のみ物理削除（variantもまとめて消す）
	Delete(ctx context.Context, productID int64) error
}
