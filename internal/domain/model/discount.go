package model

import "time"

// 割引コード。コードは大文字で保存し、照合は大文字小文字を無視する。
type DiscountCode struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Code string `gorm:"type:varchar(100);not null;uniqueIndex" json:"code"`

	//割引率（%）
	Percentage  int64  `gorm:"not null" json:"percentage"`
	Description string `gorm:"type:text" json:"description"`

	Active bool `gorm:"not null;default:true" json:"active"`

	//有効期間（任意）
	ValidFrom  *time.Time `json:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty"`

	//顧客ごとに1回だけ使えるか
	SingleUsePerCustomer bool `gorm:"not null;default:true" json:"single_use_per_customer"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// (コード, 顧客メール)の使用記録。行があれば単回コードの再利用をブロックする。
type DiscountCodeUsage struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	DiscountCodeID int64  `gorm:"not null;index;uniqueIndex:idx_usage_code_email" json:"discount_code_id"`
	CustomerEmail  string `gorm:"type:varchar(255);not null;uniqueIndex:idx_usage_code_email" json:"customer_email"`
	OrderID        int64  `gorm:"not null;index" json:"order_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
