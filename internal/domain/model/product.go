package model

import "time"

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	//基本価格（ペンス）
	BasePrice int64 `gorm:"not null" json:"base_price"`

	//仕入れ原価（ペンス、利益計算用）
	UnitCost int64 `gorm:"not null;default:0" json:"unit_cost"`

	//tee / hoodie / vinyl など
	ProductType string `gorm:"type:varchar(100)" json:"product_type"`
	Colour      string `gorm:"type:varchar(100)" json:"colour"`
	ImageURL    string `gorm:"type:varchar(500)" json:"image_url"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// サイズごとの在庫を持つSKU。
// 販売価格は Product.BasePrice + PriceAdjustment。
type ProductVariant struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64 `gorm:"not null;index;uniqueIndex:idx_variant_product_size" json:"product_id"`

	//S / M / L / XL など
	Size string `gorm:"type:varchar(50);not null;uniqueIndex:idx_variant_product_size" json:"size"`

	//基本価格への加算額（ペンス）
	PriceAdjustment int64 `gorm:"not null;default:0" json:"price_adjustment"`

	//在庫数。負になってはいけない
	StockQuantity int64 `gorm:"not null;default:0" json:"stock_quantity"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
