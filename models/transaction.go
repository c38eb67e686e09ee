package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	// TransactionTypeIncome 收入
	TransactionTypeIncome = "income"
	// TransactionTypeExpense 支出
	TransactionTypeExpense = "expense"
)

// Transaction 交易记录模型
// CategoryID 可为空；非空时其所属用户必须与交易所属用户一致，由接口层在写入前校验
type Transaction struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Title      string         `json:"title" gorm:"size:100;not null"`
	Amount     float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Type       string         `json:"type" gorm:"size:10;not null;index"` // income / expense
	Date       time.Time      `json:"date" gorm:"not null;index"`
	CategoryID *uint          `json:"category_id" gorm:"index"`
	Category   *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	User       User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// IsValidTransactionType 校验交易类型
func IsValidTransactionType(t string) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}
