package model

import "time"

// 顧客プロフィール。
// IDは外部の認証基盤が払い出すUUID文字列をそのまま使う。
type Customer struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
