package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"fintrack/models"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 预算聚合：不落盘任何汇总数据，每次都从交易记录实时推导，避免缓存过期问题
// 百分比统一保留两位小数（四舍五入，远离零）

// BudgetStatus 单条预算的使用状态（派生数据，不持久化）
type BudgetStatus struct {
	ID             uint            `json:"id"`
	CategoryID     uint            `json:"category_id"`
	CategoryName   string          `json:"category_name"`
	CategoryIcon   string          `json:"category_icon"`
	Amount         decimal.Decimal `json:"amount"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentageUsed decimal.Decimal `json:"percentage_used"`
	Status         string          `json:"status"` // Under / Near / Over
}

// BudgetSummary 某个月份所有预算的汇总
type BudgetSummary struct {
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	TotalBudgeted  decimal.Decimal `json:"total_budgeted"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	Budgets        []BudgetStatus  `json:"budgets"`
}

// ValidateMonthYear 校验月份和年份取值范围
func ValidateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("月份必须在 1-12 之间")
	}
	if year < 2000 || year > 2100 {
		return fmt.Errorf("年份必须在 2000-2100 之间")
	}
	return nil
}

// MonthRange 返回指定月份的时间范围 [当月第一天 00:00:00, 下月第一天前一秒]
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// percentOf 计算 part 占 total 的百分比，保留两位小数；total <= 0 时返回 0
func percentOf(part, total decimal.Decimal) decimal.Decimal {
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}

// classifyUsage 按使用率划分预算状态，80% 和 100% 边界归入更高档
func classifyUsage(percentageUsed decimal.Decimal) string {
	switch {
	case percentageUsed.GreaterThanOrEqual(decimal.NewFromInt(100)):
		return models.BudgetStatusOver
	case percentageUsed.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return models.BudgetStatusNear
	default:
		return models.BudgetStatusUnder
	}
}

// BuildStatus 根据预算和已花费金额推导使用状态（纯计算）
// 需要预加载 b.Category
func BuildStatus(b models.Budget, spent decimal.Decimal) BudgetStatus {
	percentageUsed := percentOf(spent, b.Amount)
	return BudgetStatus{
		ID:             b.ID,
		CategoryID:     b.CategoryID,
		CategoryName:   b.Category.Name,
		CategoryIcon:   b.Category.Icon,
		Amount:         b.Amount,
		Month:          b.Month,
		Year:           b.Year,
		Spent:          spent,
		Remaining:      b.Amount.Sub(spent),
		PercentageUsed: percentageUsed,
		Status:         classifyUsage(percentageUsed),
	}
}

// SummarizeBudgets 汇总一组预算状态（纯计算）
func SummarizeBudgets(month, year int, statuses []BudgetStatus) BudgetSummary {
	totalBudgeted := decimal.Zero
	totalSpent := decimal.Zero
	for _, s := range statuses {
		totalBudgeted = totalBudgeted.Add(s.Amount)
		totalSpent = totalSpent.Add(s.Spent)
	}
	if statuses == nil {
		statuses = []BudgetStatus{}
	}
	return BudgetSummary{
		Month:          month,
		Year:           year,
		TotalBudgeted:  totalBudgeted,
		TotalSpent:     totalSpent,
		TotalRemaining: totalBudgeted.Sub(totalSpent),
		Budgets:        statuses,
	}
}

// ActualSpending 统计用户某类别在指定月份的支出总额，无记录时返回 0
func ActualSpending(db *gorm.DB, userID string, categoryID uint, month, year int) (decimal.Decimal, error) {
	start, end := MonthRange(year, month)

	var total decimal.Decimal
	err := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND type = ? AND transaction_date >= ? AND transaction_date <= ?",
			userID, categoryID, models.TypeExpense, start, end).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// StatusOf 查询预算当前已花费并推导使用状态
func StatusOf(db *gorm.DB, b models.Budget) (BudgetStatus, error) {
	spent, err := ActualSpending(db, b.UserID, b.CategoryID, b.Month, b.Year)
	if err != nil {
		return BudgetStatus{}, err
	}
	return BuildStatus(b, spent), nil
}

// ListBudgets 列出用户某月份的全部预算（含类别），按类别名称排序
func ListBudgets(db *gorm.DB, userID string, month, year int) ([]models.Budget, error) {
	var budgets []models.Budget
	err := db.Preload("Category").
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Find(&budgets).Error
	if err != nil {
		return nil, err
	}
	sort.Slice(budgets, func(i, j int) bool {
		return budgets[i].Category.Name < budgets[j].Category.Name
	})
	return budgets, nil
}

// FindBudget 按 ID 查找用户自己的预算（含类别）
func FindBudget(db *gorm.DB, id uint, userID string) (*models.Budget, error) {
	var b models.Budget
	if err := db.Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// BudgetExists 预检同一 (用户, 类别, 月份, 年份) 是否已有预算
// 并发创建仍可能双双通过预检，最终由唯一索引兜底（见 IsDuplicateKeyErr）
func BudgetExists(db *gorm.DB, userID string, categoryID uint, month, year int) (bool, error) {
	var count int64
	err := db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND month = ? AND year = ?",
			userID, categoryID, month, year).
		Count(&count).Error
	return count > 0, err
}

// IsDuplicateKeyErr 判断是否为唯一索引冲突（MySQL 1062）
// 预检和提交之间被并发写入时，把底层约束错误当作重复预算处理，而不是内部错误
func IsDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *gomysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
