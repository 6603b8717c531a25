package api

import (
	"strconv"
	"time"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// BudgetHandler 预算处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// CreateBudgetRequest 创建预算请求
type CreateBudgetRequest struct {
	CategoryID uint            `json:"category_id" binding:"required" example:"1"`
	Amount     decimal.Decimal `json:"amount" example:"1000"`
	Month      int             `json:"month" binding:"required" example:"11"`
	Year       int             `json:"year" binding:"required" example:"2024"`
}

// UpdateBudgetRequest 更新预算请求，仅允许调整额度
type UpdateBudgetRequest struct {
	Amount decimal.Decimal `json:"amount" example:"1500"`
}

// Create 创建预算
// @Summary 创建预算
// @Description 为某个支出类别创建月度预算，同一类别同一月份不可重复
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=service.BudgetStatus} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "预算已存在"
// @Router /api/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		BadRequest(c, "金额必须大于 0")
		return
	}
	if err := service.ValidateMonthYear(req.Month, req.Year); err != nil {
		BadRequest(c, err.Error())
		return
	}

	cat, ok := visibleCategory(req.CategoryID, userID)
	if !ok {
		BadRequest(c, "无效的类别")
		return
	}
	// 预算只针对支出类别
	if cat.Type != models.TypeExpense {
		BadRequest(c, "只能为支出类别设置预算")
		return
	}

	exists, err := service.BudgetExists(database.DB, userID, req.CategoryID, req.Month, req.Year)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if exists {
		Conflict(c, "该类别当月预算已存在")
		return
	}

	budget := models.Budget{
		UserID:     userID,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Month:      req.Month,
		Year:       req.Year,
	}
	if err := database.DB.Create(&budget).Error; err != nil {
		// 并发创建可能绕过上面的预检查，唯一索引兜底
		if service.IsDuplicateKeyErr(err) {
			Conflict(c, "该类别当月预算已存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}

	budget.Category = *cat
	status, err := service.StatusOf(database.DB, budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	SuccessWithMessage(c, "创建成功", status)
}

// List 获取预算列表
// @Summary 获取预算列表
// @Description 获取指定月份的预算及使用情况，默认当前月份
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param month query int false "月份 (1-12)"
// @Param year query int false "年份 (2000-2100)"
// @Success 200 {object} Response{data=[]service.BudgetStatus} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month, year, ok := periodFromQuery(c)
	if !ok {
		return
	}

	budgets, err := service.ListBudgets(database.DB, userID, month, year)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	statuses := make([]service.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		status, err := service.StatusOf(database.DB, b)
		if err != nil {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
			return
		}
		statuses = append(statuses, status)
	}

	Success(c, statuses)
}

// GetStatus 获取预算汇总
// @Summary 获取预算汇总
// @Description 获取指定月份所有预算的总额、总花费与剩余，默认当前月份
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param month query int false "月份 (1-12)"
// @Param year query int false "年份 (2000-2100)"
// @Success 200 {object} Response{data=service.BudgetSummary} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/budgets/status [get]
func (h *BudgetHandler) GetStatus(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	month, year, ok := periodFromQuery(c)
	if !ok {
		return
	}

	budgets, err := service.ListBudgets(database.DB, userID, month, year)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	statuses := make([]service.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		status, err := service.StatusOf(database.DB, b)
		if err != nil {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
			return
		}
		statuses = append(statuses, status)
	}

	Success(c, service.SummarizeBudgets(month, year, statuses))
}

// Get 获取单条预算
// @Summary 获取单条预算
// @Description 根据 ID 获取预算及使用情况
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response{data=service.BudgetStatus} "获取成功"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	budget, err := service.FindBudget(database.DB, uint(id), userID)
	if err != nil {
		NotFound(c, "预算不存在")
		return
	}

	status, err := service.StatusOf(database.DB, *budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, status)
}

// Update 更新预算额度
// @Summary 更新预算额度
// @Description 调整预算金额，类别和月份不可修改
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Param request body UpdateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=service.BudgetStatus} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/budgets/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	budget, err := service.FindBudget(database.DB, uint(id), userID)
	if err != nil {
		NotFound(c, "预算不存在")
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		BadRequest(c, "金额必须大于 0")
		return
	}

	if err := database.DB.Model(budget).Update("amount", req.Amount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	budget.Amount = req.Amount

	status, err := service.StatusOf(database.DB, *budget)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", status)
}

// Delete 删除预算
// @Summary 删除预算
// @Description 删除指定的预算
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	budget, err := service.FindBudget(database.DB, uint(id), userID)
	if err != nil {
		NotFound(c, "预算不存在")
		return
	}

	if err := database.DB.Delete(budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// periodFromQuery 解析月份年份参数，缺省取当前时间；非法时写入 400 响应并返回 false
func periodFromQuery(c *gin.Context) (int, int, bool) {
	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			BadRequest(c, "月份必须是数字")
			return 0, 0, false
		}
		month = n
	}
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			BadRequest(c, "年份必须是数字")
			return 0, 0, false
		}
		year = n
	}
	if err := service.ValidateMonthYear(month, year); err != nil {
		BadRequest(c, err.Error())
		return 0, 0, false
	}
	return month, year, true
}
