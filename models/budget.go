package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget 预算
// 只能针对支出类别设置；同一用户同一类别同一月份最多一条，由复合唯一索引兜底
// 不走软删除：删除后的行若留在表里会一直占着唯一索引，导致同期预算无法重建
type Budget struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	UserID     string          `json:"user_id" gorm:"size:64;not null;uniqueIndex:idx_budget_period"`
	CategoryID uint            `json:"category_id" gorm:"not null;uniqueIndex:idx_budget_period"`
	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Month      int             `json:"month" gorm:"not null;uniqueIndex:idx_budget_period"` // 1-12
	Year       int             `json:"year" gorm:"not null;uniqueIndex:idx_budget_period"`  // 2000-2100
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Category   Category        `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// 预算使用状态
const (
	BudgetStatusUnder = "Under" // 使用率 < 80%
	BudgetStatusNear  = "Near"  // 80% <= 使用率 < 100%
	BudgetStatusOver  = "Over"  // 使用率 >= 100%
)
