package model

import "time"

// 注文時点の配送先スナップショット。
// 1つのOrderから参照され、作成後は変更しない（再注文は新しい行を作る）。
type Address struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID int64 `gorm:"not null;index" json:"customer_id"`

	//宛名
	Name string `gorm:"type:varchar(255)" json:"name"`

	Line1      string `gorm:"type:varchar(255)" json:"line1"`
	Line2      string `gorm:"type:varchar(255)" json:"line2"`
	City       string `gorm:"type:varchar(255)" json:"city"`
	State      string `gorm:"type:varchar(255)" json:"state"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string `gorm:"type:varchar(10);not null;default:'GB'" json:"country"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
