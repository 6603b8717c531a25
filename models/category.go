package models

import (
	"time"

	"gorm.io/gorm"
)

// 类别类型
const (
	TypeIncome  = "Income"
	TypeExpense = "Expense"
)

// IsValidType 校验类别类型取值
func IsValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// Category 收支类别
// UserID 为空表示系统内置类别，所有用户可见且不可删除；非空表示用户自定义类别
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:50;not null"`
	Type      string         `json:"type" gorm:"size:10;not null;index"` // Income / Expense
	Icon      string         `json:"icon" gorm:"size:20"`
	UserID    *string        `json:"user_id" gorm:"size:64;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// IsDefault 是否为系统内置类别
func (c *Category) IsDefault() bool {
	return c.UserID == nil
}
