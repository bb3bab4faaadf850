package model

import "time"

// 注文明細。商品名・サイズ・画像は購入時点のスナップショットで、
// 後からカタログを編集しても変わらない。作成後は不変。
type OrderItem struct {
	ID               int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID          int64 `gorm:"not null;index" json:"order_id"`
	ProductVariantID int64 `gorm:"not null;index" json:"product_variant_id"`

	ProductName     string `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductSize     string `gorm:"type:varchar(50)" json:"product_size"`
	ProductImageURL string `gorm:"type:varchar(500)" json:"product_image_url"`

	Quantity  int64 `gorm:"not null" json:"quantity"`
	UnitPrice int64 `gorm:"not null" json:"unit_price"`

	//LineTotal = UnitPrice * Quantity
	LineTotal int64 `gorm:"not null" json:"line_total"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
