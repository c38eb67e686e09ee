package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 交易类别（每个用户独立维护）
// (user_id, name) 组合唯一索引是同名类别的最终防线，
// 接口层的重名预检查只负责给出友好提示
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:50;not null;uniqueIndex:idx_categories_user_name"`
	Color     string         `json:"color" gorm:"size:20;default:#64748b"` // 颜色代码，如 #ef4444
	UserID    uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_categories_user_name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

func (Category) TableName() string {
	return "categories"
}

// DefaultCategories 新用户注册时初始化的类别
func DefaultCategories(userID uint) []Category {
	return []Category{
		{Name: "餐饮", Color: "#ef4444", UserID: userID},
		{Name: "交通", Color: "#3b82f6", UserID: userID},
		{Name: "购物", Color: "#a855f7", UserID: userID},
		{Name: "住房", Color: "#14b8a6", UserID: userID},
		{Name: "工资", Color: "#10b981", UserID: userID},
		{Name: "其他", Color: "#64748b", UserID: userID},
	}
}
