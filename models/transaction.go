package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction 交易记录
// Type 冗余自所属类别，创建和更新时与类别保持同步，便于按类型聚合
type Transaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          string          `json:"user_id" gorm:"size:64;index;not null"`
	CategoryID      uint            `json:"category_id" gorm:"index;not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Description     string          `json:"description" gorm:"size:255"`
	TransactionDate time.Time       `json:"transaction_date" gorm:"not null;index"`
	Type            string          `json:"type" gorm:"size:10;not null;index"` // Income / Expense
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`
	Category        Category        `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}
