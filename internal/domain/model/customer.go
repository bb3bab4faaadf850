package model

import "time"

// 初回注文時に自動作成される。emailは小文字で保存する。
type Customer struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Email string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Name  string `gorm:"type:varchar(255)" json:"name"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
