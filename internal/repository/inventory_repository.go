package repository

import (
	"context"

	"app/internal/domain/model"
)

type InventoryRepository interface {
	//商品ID+サイズでvariantを引く（カート項目の解決に使う）
	FindVariant(ctx context.Context, productID int64, size string) (model.ProductVariant, error)
	FindVariantByID(ctx context.Context, variantID int64) (model.ProductVariant, error)
	ListVariantsByProduct(ctx context.Context, productID int64) ([]model.ProductVariant, error)
	ListVariantsByProducts(ctx context.Context, productIDs []int64) ([]model.ProductVariant, error)
	CreateVariant(ctx context.Context, v model.ProductVariant) (int64, error)

	//在庫が足りるときだけ減算する（条件付きUPDATE、足りなければfalse）
	DecreaseStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error)

	//管理画面の在庫調整用
	SetStock(ctx context.Context, variantID int64, newStock int64) error

	//在庫変動ログの追記。更新・削除はしない
	CreateTransaction(ctx context.Context, txn model.StockTransaction) error
	ListTransactionsByVariant(ctx context.Context, variantID int64, limit int) ([]model.StockTransaction, error)

	//在庫が1以上threshold未満のvariant
	ListLowStock(ctx context.Context, threshold int64) ([]model.ProductVariant, error)
}
