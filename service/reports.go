package service

import (
	"fmt"
	"sort"
	"time"

	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 报表引擎：只读分析视图，全部从交易记录点时读取后纯计算得出，不做任何写入

// MonthlySummary 月度收支汇总
type MonthlySummary struct {
	Month            int             `json:"month"`
	Year             int             `json:"year"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transaction_count"`
	SavingsRate      decimal.Decimal `json:"savings_rate"` // 结余占收入百分比，收入为 0 时为 0
}

// CategorySpending 单个类别的支出占比
type CategorySpending struct {
	CategoryName string          `json:"category_name"`
	CategoryIcon string          `json:"category_icon"`
	Amount       decimal.Decimal `json:"amount"`
	Percentage   decimal.Decimal `json:"percentage"`
}

// SpendingByCategoryReport 按类别的支出分布报表
type SpendingByCategoryReport struct {
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
	TotalSpending decimal.Decimal    `json:"total_spending"`
	Categories    []CategorySpending `json:"categories"`
}

// MonthlyTrend 单个月份的收支对比
type MonthlyTrend struct {
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	MonthName  string          `json:"month_name"`
	Income     decimal.Decimal `json:"income"`
	Expenses   decimal.Decimal `json:"expenses"`
	NetSavings decimal.Decimal `json:"net_savings"`
}

// TrendReport 收支趋势报表
type TrendReport struct {
	StartDate time.Time      `json:"start_date"`
	EndDate   time.Time      `json:"end_date"`
	Trends    []MonthlyTrend `json:"trends"`
}

// SummarizeMonth 汇总一个月的交易（纯计算）
func SummarizeMonth(month, year int, txns []models.Transaction) MonthlySummary {
	totalIncome := decimal.Zero
	totalExpenses := decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case models.TypeIncome:
			totalIncome = totalIncome.Add(t.Amount)
		case models.TypeExpense:
			totalExpenses = totalExpenses.Add(t.Amount)
		}
	}
	balance := totalIncome.Sub(totalExpenses)
	return MonthlySummary{
		Month:            month,
		Year:             year,
		TotalIncome:      totalIncome,
		TotalExpenses:    totalExpenses,
		Balance:          balance,
		TransactionCount: len(txns),
		SavingsRate:      percentOf(balance, totalIncome),
	}
}

// BreakdownByCategory 按类别聚合支出交易（纯计算）
// 只统计支出类型；需要预加载 Category；结果按金额降序，金额相同按名称升序
func BreakdownByCategory(txns []models.Transaction) ([]CategorySpending, decimal.Decimal) {
	type key struct {
		name string
		icon string
	}
	sums := make(map[key]decimal.Decimal)
	total := decimal.Zero
	for _, t := range txns {
		if t.Type != models.TypeExpense {
			continue
		}
		k := key{name: t.Category.Name, icon: t.Category.Icon}
		sums[k] = sums[k].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	categories := make([]CategorySpending, 0, len(sums))
	for k, amount := range sums {
		categories = append(categories, CategorySpending{
			CategoryName: k.name,
			CategoryIcon: k.icon,
			Amount:       amount,
			Percentage:   percentOf(amount, total),
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		if !categories[i].Amount.Equal(categories[j].Amount) {
			return categories[i].Amount.GreaterThan(categories[j].Amount)
		}
		return categories[i].CategoryName < categories[j].CategoryName
	})
	return categories, total
}

// TrendSeries 按 (年, 月) 聚合收支（纯计算）
// 结果按时间升序；没有交易的月份不补零
func TrendSeries(txns []models.Transaction) []MonthlyTrend {
	type key struct {
		year  int
		month int
	}
	type bucket struct {
		income   decimal.Decimal
		expenses decimal.Decimal
	}
	buckets := make(map[key]*bucket)
	for _, t := range txns {
		k := key{year: t.TransactionDate.Year(), month: int(t.TransactionDate.Month())}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{income: decimal.Zero, expenses: decimal.Zero}
			buckets[k] = b
		}
		switch t.Type {
		case models.TypeIncome:
			b.income = b.income.Add(t.Amount)
		case models.TypeExpense:
			b.expenses = b.expenses.Add(t.Amount)
		}
	}

	trends := make([]MonthlyTrend, 0, len(buckets))
	for k, b := range buckets {
		trends = append(trends, MonthlyTrend{
			Month:      k.month,
			Year:       k.year,
			MonthName:  time.Month(k.month).String(),
			Income:     b.income,
			Expenses:   b.expenses,
			NetSavings: b.income.Sub(b.expenses),
		})
	}
	sort.Slice(trends, func(i, j int) bool {
		if trends[i].Year != trends[j].Year {
			return trends[i].Year < trends[j].Year
		}
		return trends[i].Month < trends[j].Month
	})
	return trends
}

// transactionsInRange 读取用户时间范围内的交易（含类别）
func transactionsInRange(db *gorm.DB, userID string, start, end time.Time, expenseOnly bool) ([]models.Transaction, error) {
	query := db.Preload("Category").
		Where("user_id = ? AND transaction_date >= ? AND transaction_date <= ?", userID, start, end)
	if expenseOnly {
		query = query.Where("type = ?", models.TypeExpense)
	}
	var txns []models.Transaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// MonthlyReport 生成月度收支汇总
func MonthlyReport(db *gorm.DB, userID string, month, year int) (MonthlySummary, error) {
	if err := ValidateMonthYear(month, year); err != nil {
		return MonthlySummary{}, err
	}
	start, end := MonthRange(year, month)
	txns, err := transactionsInRange(db, userID, start, end, false)
	if err != nil {
		return MonthlySummary{}, err
	}
	return SummarizeMonth(month, year, txns), nil
}

// SpendingByCategory 生成按类别的支出分布报表
func SpendingByCategory(db *gorm.DB, userID string, start, end time.Time) (SpendingByCategoryReport, error) {
	if start.After(end) {
		return SpendingByCategoryReport{}, fmt.Errorf("开始时间不能晚于结束时间")
	}
	txns, err := transactionsInRange(db, userID, start, end, true)
	if err != nil {
		return SpendingByCategoryReport{}, err
	}
	categories, total := BreakdownByCategory(txns)
	return SpendingByCategoryReport{
		StartDate:     start,
		EndDate:       end,
		TotalSpending: total,
		Categories:    categories,
	}, nil
}

// IncomeVsExpenseTrends 生成收支趋势报表
func IncomeVsExpenseTrends(db *gorm.DB, userID string, start, end time.Time) (TrendReport, error) {
	if start.After(end) {
		return TrendReport{}, fmt.Errorf("开始时间不能晚于结束时间")
	}
	txns, err := transactionsInRange(db, userID, start, end, false)
	if err != nil {
		return TrendReport{}, err
	}
	return TrendReport{
		StartDate: start,
		EndDate:   end,
		Trends:    TrendSeries(txns),
	}, nil
}

// DefaultMonthWindow 默认统计窗口：当前自然月
func DefaultMonthWindow(now time.Time) (time.Time, time.Time) {
	return MonthRange(now.Year(), int(now.Month()))
}

// DefaultTrendWindow 默认趋势窗口：截至当前月的最近 6 个自然月，起点取月初
func DefaultTrendWindow(now time.Time) (time.Time, time.Time) {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	start := firstOfMonth.AddDate(0, -5, 0)
	return start, now
}
