package service

import (
	"errors"
	"testing"
	"time"

	"fintrack/models"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidateMonthYear(t *testing.T) {
	assert.NoError(t, ValidateMonthYear(1, 2000))
	assert.NoError(t, ValidateMonthYear(12, 2100))
	assert.NoError(t, ValidateMonthYear(6, 2024))

	assert.Error(t, ValidateMonthYear(0, 2024))
	assert.Error(t, ValidateMonthYear(13, 2024))
	assert.Error(t, ValidateMonthYear(6, 1999))
	assert.Error(t, ValidateMonthYear(6, 2101))
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, 11)
	assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2024, 11, 30, 23, 59, 59, 0, time.Local), end)

	// 跨年
	start, end = MonthRange(2024, 12)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 0, time.Local), end)

	// 闰年二月
	_, end = MonthRange(2024, 2)
	assert.Equal(t, 29, end.Day())
}

func TestBuildStatus(t *testing.T) {
	budget := models.Budget{
		ID:         1,
		CategoryID: 2,
		Amount:     dec("1000"),
		Month:      11,
		Year:       2024,
		Category:   models.Category{Name: "Food & Dining", Icon: "🍔"},
	}

	cases := []struct {
		name       string
		spent      string
		percentage string
		remaining  string
		status     string
	}{
		{"未使用", "0", "0", "1000", models.BudgetStatusUnder},
		{"低使用率", "250", "25", "750", models.BudgetStatusUnder},
		{"接近阈值下方", "799.99", "80", "200.01", models.BudgetStatusNear}, // 79.999% 四舍五入到 80.00，归入 Near
		{"恰好 80%", "800", "80", "200", models.BudgetStatusNear},
		{"99%", "990", "99", "10", models.BudgetStatusNear},
		{"恰好 100%", "1000", "100", "0", models.BudgetStatusOver},
		{"超支", "1500", "150", "-500", models.BudgetStatusOver},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := BuildStatus(budget, dec(tc.spent))
			assert.True(t, s.PercentageUsed.Equal(dec(tc.percentage)),
				"percentage_used = %s, want %s", s.PercentageUsed, tc.percentage)
			assert.True(t, s.Remaining.Equal(dec(tc.remaining)),
				"remaining = %s, want %s", s.Remaining, tc.remaining)
			assert.Equal(t, tc.status, s.Status)
			assert.Equal(t, "Food & Dining", s.CategoryName)
			assert.Equal(t, "🍔", s.CategoryIcon)
		})
	}
}

func TestBuildStatus_ZeroAmount(t *testing.T) {
	// 预算金额为 0 时使用率恒为 0，不做除法
	budget := models.Budget{Amount: decimal.Zero, Category: models.Category{Name: "X"}}
	s := BuildStatus(budget, dec("300"))
	assert.True(t, s.PercentageUsed.IsZero())
	assert.Equal(t, models.BudgetStatusUnder, s.Status)
	assert.True(t, s.Remaining.Equal(dec("-300")))
}

func TestBuildStatus_PercentageRounding(t *testing.T) {
	// 1/3 → 33.33（两位小数，四舍五入）
	budget := models.Budget{Amount: dec("300"), Category: models.Category{Name: "X"}}
	s := BuildStatus(budget, dec("100"))
	assert.Equal(t, "33.33", s.PercentageUsed.StringFixed(2))
}

func TestSummarizeBudgets(t *testing.T) {
	statuses := []BudgetStatus{
		{Amount: dec("1000"), Spent: dec("400")},
		{Amount: dec("500"), Spent: dec("600")},
	}
	summary := SummarizeBudgets(11, 2024, statuses)

	assert.Equal(t, 11, summary.Month)
	assert.Equal(t, 2024, summary.Year)
	assert.True(t, summary.TotalBudgeted.Equal(dec("1500")))
	assert.True(t, summary.TotalSpent.Equal(dec("1000")))
	assert.True(t, summary.TotalRemaining.Equal(dec("500")))
	assert.Len(t, summary.Budgets, 2)
}

func TestSummarizeBudgets_Empty(t *testing.T) {
	summary := SummarizeBudgets(1, 2024, nil)
	assert.True(t, summary.TotalBudgeted.IsZero())
	assert.True(t, summary.TotalSpent.IsZero())
	assert.True(t, summary.TotalRemaining.IsZero())
	require.NotNil(t, summary.Budgets)
	assert.Empty(t, summary.Budgets)
}

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.True(t, IsDuplicateKeyErr(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.False(t, IsDuplicateKeyErr(&gomysql.MySQLError{Number: 1045}))
	assert.False(t, IsDuplicateKeyErr(errors.New("connection refused")))
	assert.False(t, IsDuplicateKeyErr(nil))
}
