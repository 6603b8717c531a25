package api

import (
	"time"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler 报表处理器
type ReportHandler struct{}

// NewReportHandler 创建报表处理器
func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

// GetMonthlySummary 获取月度收支汇总
// @Summary 获取月度收支汇总
// @Description 汇总指定月份的总收入、总支出、净储蓄与储蓄率，默认当前月份
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param month query int false "月份 (1-12)"
// @Param year query int false "年份 (2000-2100)"
// @Success 200 {object} Response{data=service.MonthlySummary} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/reports/monthly-summary [get]
func (h *ReportHandler) GetMonthlySummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month, year, ok := periodFromQuery(c)
	if !ok {
		return
	}

	summary, err := service.MonthlyReport(database.DB, userID, month, year)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, summary)
}

// GetSpendingByCategory 获取分类支出报表
// @Summary 获取分类支出报表
// @Description 按类别汇总时间范围内的支出金额与占比，默认当前月份
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "开始日期 (2024-01-01)"
// @Param endDate query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=service.SpendingByCategoryReport} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/reports/spending-by-category [get]
func (h *ReportHandler) GetSpendingByCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	start, end, ok := rangeFromQuery(c, service.DefaultMonthWindow)
	if !ok {
		return
	}

	report, err := service.SpendingByCategory(database.DB, userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, report)
}

// GetIncomeVsExpenseTrends 获取收支趋势
// @Summary 获取收支趋势
// @Description 按月份统计时间范围内的收入与支出走势，默认最近六个月
// @Tags 报表
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "开始日期 (2024-01-01)"
// @Param endDate query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=service.TrendReport} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/reports/income-vs-expense-trends [get]
func (h *ReportHandler) GetIncomeVsExpenseTrends(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	start, end, ok := rangeFromQuery(c, service.DefaultTrendWindow)
	if !ok {
		return
	}

	report, err := service.IncomeVsExpenseTrends(database.DB, userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, report)
}

// rangeFromQuery 解析开始结束日期，缺省走 fallback 窗口；非法时写入 400 响应并返回 false
func rangeFromQuery(c *gin.Context, fallback func(time.Time) (time.Time, time.Time)) (time.Time, time.Time, bool) {
	start, end := fallback(time.Now())

	if v := c.Query("startDate"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
			return time.Time{}, time.Time{}, false
		}
		start = t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
			return time.Time{}, time.Time{}, false
		}
		// 包含结束日期当天
		end = t.Add(24*time.Hour - time.Second)
	}
	if start.After(end) {
		BadRequest(c, "开始时间不能晚于结束时间")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
