package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// カート1行分。PaymentIntentのmetadataにもこの形のJSONで入れる。
type CartLine struct {
	ProductID int64  `json:"id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
	Size      string `json:"size"`
	Image     string `json:"image,omitempty"`
}

type InventoryUsecase struct {
	tx        repo.TransactionManager
	inventory repo.InventoryRepository
}

func NewInventoryUsecase(tx repo.TransactionManager, inventory repo.InventoryRepository) *InventoryUsecase {
	return &InventoryUsecase{tx: tx, inventory: inventory}
}

// CheckAvailability は全行の在庫を読み取りだけで確認する。
// ロックはしないので、確定時にDecrementで再チェックされる前提。
// 足りない場合は (false, 理由, nil)。理由は商品名と残数入り。
func (u *InventoryUsecase) CheckAvailability(ctx context.Context, lines []CartLine) (bool, string, error) {
	for _, line := range lines {
		v, err := u.inventory.FindVariant(ctx, line.ProductID, line.Size)
		if errors.Is(err, repo.ErrNotFound) {
			return false, fmt.Sprintf("%s (Size: %s) is no longer available", line.Name, line.Size), nil
		}
		if err != nil {
			return false, "", err
		}

		if v.StockQuantity < line.Quantity {
			return false, fmt.Sprintf(
				"Insufficient stock for %s (Size: %s). Only %d remaining.",
				line.Name, line.Size, v.StockQuantity,
			), nil
		}
	}
	return true, "", nil
}

// Decrement は注文確定後の在庫減算。variantごとに1トランザクションで、
// 条件付きUPDATE + saleログの追記をまとめて行う。
// 複数行のカートは1行ずつ処理し、途中で失敗したらそこでエラーを返す
// （注文自体は既に存在する。呼び出し側が手動対応に回す）。
func (u *InventoryUsecase) Decrement(ctx context.Context, lines []CartLine, orderID int64, orderNumber string) error {
	for _, line := range lines {
		err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			v, err := r.Inventory().FindVariant(ctx, line.ProductID, line.Size)
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("variant not found: product=%d size=%s", line.ProductID, line.Size)
			}
			if err != nil {
				return err
			}

			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, v.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf(
					"insufficient stock for %s (Size: %s): requested %d",
					line.Name, line.Size, line.Quantity,
				)
			}

			//減算後の値を同一トランザクション内で読み直してログを書く。
			//before/afterがコミット時点の在庫と必ず一致する
			after, err := r.Inventory().FindVariantByID(ctx, v.ID)
			if err != nil {
				return err
			}

			oid := orderID
			return r.Inventory().CreateTransaction(ctx, model.StockTransaction{
				ProductVariantID: v.ID,
				OrderID:          &oid,
				TransactionType:  model.TransactionTypeSale,
				QuantityChange:   -line.Quantity,
				StockBefore:      after.StockQuantity + line.Quantity,
				StockAfter:       after.StockQuantity,
				CreatedBy:        "system",
				Notes:            fmt.Sprintf("Order %s", orderNumber),
			})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

type AdjustStockInput struct {
	VariantID int64
	NewStock  int64
	Reason    string
	Notes     string
}

// AdjustStock は管理画面からの在庫調整。
// 必ず対応するStockTransactionを1件残す。負の在庫は拒否。
func (u *InventoryUsecase) AdjustStock(ctx context.Context, in AdjustStockInput) error {
	if in.NewStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock cannot be negative")
	}

	reason := model.TransactionType(in.Reason)
	if reason == "" {
		reason = model.TransactionTypeManualAdjustment
	}
	if !reason.Valid() || reason == model.TransactionTypeSale {
		return NewHTTPError(http.StatusBadRequest, "invalid reason")
	}

	notes := in.Notes
	if notes == "" {
		notes = fmt.Sprintf("Manual adjustment: %s", reason)
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		v, err := r.Inventory().FindVariantByID(ctx, in.VariantID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "variant not found")
		}
		if err != nil {
			return err
		}

		if err := r.Inventory().SetStock(ctx, v.ID, in.NewStock); err != nil {
			return err
		}

		return r.Inventory().CreateTransaction(ctx, model.StockTransaction{
			ProductVariantID: v.ID,
			TransactionType:  reason,
			QuantityChange:   in.NewStock - v.StockQuantity,
			StockBefore:      v.StockQuantity,
			StockAfter:       in.NewStock,
			CreatedBy:        "admin",
			Notes:            notes,
		})
	})
	if err != nil {
		if _, ok := AsHTTPError(err); ok {
			return err
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// LowStock は在庫が1以上threshold未満のvariant一覧。
func (u *InventoryUsecase) LowStock(ctx context.Context, threshold int64) ([]model.ProductVariant, error) {
	if threshold <= 0 {
		threshold = 5
	}
	items, err := u.inventory.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// VariantTransactions はvariantの在庫変動履歴（新しい順）。
func (u *InventoryUsecase) VariantTransactions(ctx context.Context, variantID int64, limit int) ([]model.StockTransaction, error) {
	items, err := u.inventory.ListTransactionsByVariant(ctx, variantID, limit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}
