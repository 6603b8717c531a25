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

// TransactionHandler 交易记录处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建交易记录处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// TransactionResponse 交易记录返回结构
type TransactionResponse struct {
	ID              uint            `json:"id"`
	CategoryID      uint            `json:"category_id"`
	CategoryName    string          `json:"category_name"`
	CategoryIcon    string          `json:"category_icon"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date"`
	Type            string          `json:"type"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CreateTransactionRequest 创建交易请求
type CreateTransactionRequest struct {
	CategoryID      uint            `json:"category_id" binding:"required" example:"1"`
	Amount          decimal.Decimal `json:"amount" example:"99.99"`
	Description     string          `json:"description" binding:"omitempty,max=255" example:"午餐"`
	TransactionDate string          `json:"transaction_date" binding:"required" example:"2024-11-15"`
}

// UpdateTransactionRequest 更新交易请求
type UpdateTransactionRequest struct {
	CategoryID      uint            `json:"category_id" binding:"required" example:"1"`
	Amount          decimal.Decimal `json:"amount" example:"99.99"`
	Description     string          `json:"description" binding:"omitempty,max=255" example:"午餐"`
	TransactionDate string          `json:"transaction_date" binding:"required" example:"2024-11-15"`
}

// TransactionListRequest 交易列表请求
type TransactionListRequest struct {
	PageNumber int    `form:"pageNumber" example:"1"`
	PageSize   int    `form:"pageSize" example:"10"`
	CategoryID uint   `form:"categoryId" example:"1"`
	StartDate  string `form:"startDate" example:"2024-01-01"`
	EndDate    string `form:"endDate" example:"2024-12-31"`
}

// StatisticsResponse 收支统计返回
type StatisticsResponse struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Balance       decimal.Decimal `json:"balance"`
	StartDate     string          `json:"start_date,omitempty"`
	EndDate       string          `json:"end_date,omitempty"`
}

func toTransactionResponse(t models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		CategoryID:      t.CategoryID,
		CategoryName:    t.Category.Name,
		CategoryIcon:    t.Category.Icon,
		Amount:          t.Amount,
		Description:     t.Description,
		TransactionDate: t.TransactionDate,
		Type:            t.Type,
		CreatedAt:       t.CreatedAt,
	}
}

// visibleCategory 取出对当前用户可见的类别（内置或本人自定义）
func visibleCategory(id uint, userID string) (*models.Category, bool) {
	var cat models.Category
	if err := database.DB.First(&cat, id).Error; err != nil {
		return nil, false
	}
	if !service.CanView(cat.UserID, userID) {
		return nil, false
	}
	return &cat, true
}

// Create 创建交易记录
// @Summary 创建交易记录
// @Description 创建一条交易记录，类型取自所属类别
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=TransactionResponse} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	cat, ok := visibleCategory(req.CategoryID, userID)
	if !ok {
		BadRequest(c, "无效的类别")
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		BadRequest(c, "金额必须大于 0")
		return
	}

	txnDate, err := time.ParseInLocation("2006-01-02", req.TransactionDate, time.Local)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	txn := models.Transaction{
		UserID:          userID,
		CategoryID:      req.CategoryID,
		Amount:          req.Amount,
		Description:     req.Description,
		TransactionDate: txnDate,
		Type:            cat.Type,
	}
	if err := database.DB.Create(&txn).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建交易记录失败"))
		return
	}
	txn.Category = *cat

	// 支出入账后检查预算，超支则发提醒邮件（尽力而为，不阻塞响应）
	if txn.Type == models.TypeExpense {
		go service.MaybeSendBudgetAlert(database.DB, userID, middleware.GetCurrentUserEmail(c),
			txn.CategoryID, int(txnDate.Month()), txnDate.Year())
	}

	SuccessWithMessage(c, "创建成功", toTransactionResponse(txn))
}

// List 获取交易记录列表
// @Summary 获取交易记录列表
// @Description 分页获取当前用户的交易记录，支持按类别和日期范围筛选
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param pageNumber query int false "页码" default(1)
// @Param pageSize query int false "每页数量（1-100）" default(10)
// @Param categoryId query int false "类别筛选"
// @Param startDate query string false "开始日期 (2024-01-01)"
// @Param endDate query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]TransactionResponse}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 分页参数钳制
	if req.PageNumber < 1 {
		req.PageNumber = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	if req.CategoryID != 0 {
		if _, ok := visibleCategory(req.CategoryID, userID); !ok {
			BadRequest(c, "无效的类别")
			return
		}
	}

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if req.CategoryID != 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	var startDate, endDate time.Time
	if req.StartDate != "" {
		var err error
		startDate, err = time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
		if err != nil {
			BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
			return
		}
		query = query.Where("transaction_date >= ?", startDate)
	}
	if req.EndDate != "" {
		var err error
		endDate, err = time.ParseInLocation("2006-01-02", req.EndDate, time.Local)
		if err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
			return
		}
		// 包含结束日期当天
		endDate = endDate.Add(24*time.Hour - time.Second)
		query = query.Where("transaction_date <= ?", endDate)
	}
	if req.StartDate != "" && req.EndDate != "" && startDate.After(endDate) {
		BadRequest(c, "开始时间不能晚于结束时间")
		return
	}

	// 获取总数
	var total int64
	query.Count(&total)

	// 获取列表
	var txns []models.Transaction
	offset := (req.PageNumber - 1) * req.PageSize
	if err := query.Preload("Category").
		Order("transaction_date DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&txns).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	list := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		list = append(list, toTransactionResponse(t))
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.PageNumber,
		PageSize: req.PageSize,
		List:     list,
	})
}

// Get 获取单条交易记录
// @Summary 获取单条交易记录
// @Description 根据 ID 获取交易记录详情
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response{data=TransactionResponse} "获取成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var txn models.Transaction
	if err := database.DB.Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&txn).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, toTransactionResponse(txn))
}

// Update 更新交易记录
// @Summary 更新交易记录
// @Description 更新指定的交易记录，类型随类别同步
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Param request body UpdateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=TransactionResponse} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var txn models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	cat, ok := visibleCategory(req.CategoryID, userID)
	if !ok {
		BadRequest(c, "无效的类别")
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		BadRequest(c, "金额必须大于 0")
		return
	}
	txnDate, err := time.ParseInLocation("2006-01-02", req.TransactionDate, time.Local)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	updates := map[string]interface{}{
		"category_id":      req.CategoryID,
		"amount":           req.Amount,
		"description":      req.Description,
		"transaction_date": txnDate,
		"type":             cat.Type, // 类型随类别同步
	}
	if err := database.DB.Model(&txn).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	// 重新获取更新后的记录
	database.DB.Preload("Category").First(&txn, txn.ID)
	SuccessWithMessage(c, "更新成功", toTransactionResponse(txn))
}

// Delete 删除交易记录
// @Summary 删除交易记录
// @Description 删除指定的交易记录
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var txn models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&txn).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&txn).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// GetStatistics 获取收支统计
// @Summary 获取收支统计
// @Description 统计时间范围内的收入总和、支出总和与结余，不传日期则统计全部
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "开始日期 (2024-01-01)"
// @Param endDate query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=StatisticsResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/transactions/statistics [get]
func (h *TransactionHandler) GetStatistics(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startDateStr := c.Query("startDate")
	endDateStr := c.Query("endDate")

	incomeQ := database.DB.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, models.TypeIncome)
	expenseQ := database.DB.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, models.TypeExpense)

	if startDateStr != "" {
		t, err := time.ParseInLocation("2006-01-02", startDateStr, time.Local)
		if err != nil {
			BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
			return
		}
		incomeQ = incomeQ.Where("transaction_date >= ?", t)
		expenseQ = expenseQ.Where("transaction_date >= ?", t)
	}
	if endDateStr != "" {
		t, err := time.ParseInLocation("2006-01-02", endDateStr, time.Local)
		if err != nil {
			BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
			return
		}
		t = t.Add(24*time.Hour - time.Second)
		incomeQ = incomeQ.Where("transaction_date <= ?", t)
		expenseQ = expenseQ.Where("transaction_date <= ?", t)
	}

	var totalIncome, totalExpenses decimal.Decimal
	if err := incomeQ.Select("COALESCE(SUM(amount), 0)").Scan(&totalIncome).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	if err := expenseQ.Select("COALESCE(SUM(amount), 0)").Scan(&totalExpenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	Success(c, StatisticsResponse{
		TotalIncome:   totalIncome,
		TotalExpenses: totalExpenses,
		Balance:       totalIncome.Sub(totalExpenses),
		StartDate:     startDateStr,
		EndDate:       endDateStr,
	})
}
