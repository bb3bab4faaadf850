package model

import "time"

type TransactionType string

const (
	TransactionTypeSale             TransactionType = "sale"
	TransactionTypeManualAdjustment TransactionType = "manual_adjustment"
	TransactionTypeRestock          TransactionType = "restock"
	TransactionTypeReturn           TransactionType = "return"
	TransactionTypeDamaged          TransactionType = "damaged"
)

// 在庫変動の監査ログ。追記専用でUPDATE/DELETEしない。
// 不変条件: StockAfter = StockBefore + QuantityChange
type StockTransaction struct {
	ID               int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductVariantID int64  `gorm:"not null;index" json:"product_variant_id"`
	OrderID          *int64 `gorm:"index" json:"order_id,omitempty"`

	TransactionType TransactionType `gorm:"type:varchar(50);not null" json:"transaction_type"`

	//符号付き変動量（販売なら負）
	QuantityChange int64 `gorm:"not null" json:"quantity_change"`
	StockBefore    int64 `gorm:"not null" json:"stock_before"`
	StockAfter     int64 `gorm:"not null" json:"stock_after"`

	//system / admin など
	CreatedBy string `gorm:"type:varchar(100);not null" json:"created_by"`
	Notes     string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// TransactionTypeが既知の値か
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypeManualAdjustment,
		TransactionTypeRestock, TransactionTypeReturn, TransactionTypeDamaged:
		return true
	}
	return false
}
