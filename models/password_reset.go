package models

import (
	"crypto/rand"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PasswordReset 密码重置验证码模型
type PasswordReset struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Token     string         `json:"token" gorm:"index;size:64;not null"` // 6位数字验证码
	Email     string         `json:"email" gorm:"size:100;not null"`
	ExpiresAt time.Time      `json:"expires_at" gorm:"not null"`
	Used      bool           `json:"used" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (PasswordReset) TableName() string {
	return "password_resets"
}

// IsExpired 检查验证码是否过期
func (p *PasswordReset) IsExpired() bool {
	return time.Now().After(p.ExpiresAt)
}

// IsValid 检查验证码是否有效
func (p *PasswordReset) IsValid() bool {
	return !p.Used && !p.IsExpired()
}

// GenerateVerificationCode 生成6位数字验证码
func GenerateVerificationCode() (string, error) {
	bytes := make([]byte, 3)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	code := int(bytes[0])<<16 | int(bytes[1])<<8 | int(bytes[2])
	code = code%900000 + 100000 // 确保是6位数
	return fmt.Sprintf("%06d", code), nil
}
