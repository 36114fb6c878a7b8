package models

import (
	"gorm.io/gorm"
)

// User 表示系統中的用戶
type User struct {
	gorm.Model             // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Username        string `gorm:"uniqueIndex;not null" json:"username"` // 用戶名，必須唯一
	Password        string `gorm:"not null" json:"-"`                    // 密碼，json 序列化時會被忽略
	Name            string `json:"name"`
	Bio             string `gorm:"type:text" json:"bio"`
	ExperienceLevel string `gorm:"type:varchar(20);default:novice" json:"experienceLevel"`
}

// DisplayName 沒有設定名稱時退回用戶名
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
