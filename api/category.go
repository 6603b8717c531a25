package api

import (
	"strconv"
	"strings"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 类别处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建类别处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoryResponse 类别返回结构
type CategoryResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Icon     string `json:"icon"`
	IsCustom bool   `json:"is_custom"`
}

// CreateCategoryRequest 创建类别请求
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50" example:"Coffee"`
	Type string `json:"type" binding:"required" example:"Expense"`
	Icon string `json:"icon" binding:"omitempty,max=20" example:"☕"`
}

// UpdateCategoryRequest 更新类别请求（类型创建后不可变）
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50" example:"Coffee"`
	Icon string `json:"icon" binding:"omitempty,max=20" example:"☕"`
}

func toCategoryResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		Type:     c.Type,
		Icon:     c.Icon,
		IsCustom: !c.IsDefault(),
	}
}

// List 获取类别列表
// @Summary 获取类别列表
// @Description 返回系统内置类别和当前用户的自定义类别，按名称排序
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]CategoryResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var categories []models.Category
	if err := database.DB.
		Where("user_id IS NULL OR user_id = ?", userID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	list := make([]CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		list = append(list, toCategoryResponse(cat))
	}
	Success(c, list)
}

// Get 获取单个类别
// @Summary 获取单个类别
// @Description 根据 ID 获取类别详情，仅内置类别和自己的自定义类别可见
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response{data=CategoryResponse} "获取成功"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.Category
	if err := database.DB.First(&cat, uint(id)).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}
	if !service.CanView(cat.UserID, userID) {
		NotFound(c, "类别不存在")
		return
	}

	Success(c, toCategoryResponse(cat))
}

// Create 创建自定义类别
// @Summary 创建自定义类别
// @Description 创建当前用户的自定义类别，类型为 Income 或 Expense
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=CategoryResponse} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}
	if !models.IsValidType(req.Type) {
		BadRequest(c, "类型必须为 Income 或 Expense")
		return
	}

	cat := models.Category{
		Name:   req.Name,
		Type:   req.Type,
		Icon:   req.Icon,
		UserID: &userID,
	}
	if err := database.DB.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建类别失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", toCategoryResponse(cat))
}

// Update 更新自定义类别
// @Summary 更新自定义类别
// @Description 更新名称和图标；内置类别和他人的类别不可修改，类型不可变
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Param request body UpdateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=CategoryResponse} "更新成功"
// @Failure 403 {object} Response "无权修改"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.Category
	if err := database.DB.First(&cat, uint(id)).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}
	if !service.CanModify(cat.UserID, userID) {
		Forbidden(c, "无权修改该类别")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	updates := map[string]interface{}{
		"name": req.Name,
		"icon": req.Icon,
	}
	if err := database.DB.Model(&cat).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&cat, cat.ID)
	SuccessWithMessage(c, "更新成功", toCategoryResponse(cat))
}

// Delete 删除自定义类别
// @Summary 删除自定义类别
// @Description 删除当前用户的自定义类别；内置类别不可删除
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response "删除成功"
// @Failure 403 {object} Response "无权删除"
// @Failure 404 {object} Response "类别不存在"
// @Failure 409 {object} Response "类别仍被引用"
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var cat models.Category
	if err := database.DB.First(&cat, uint(id)).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}
	if cat.IsDefault() {
		Forbidden(c, "系统内置类别不可删除")
		return
	}
	if !service.CanModify(cat.UserID, userID) {
		Forbidden(c, "无权删除该类别")
		return
	}

	// 仍有交易或预算引用的类别不可删除，否则报表和预算会丢失类别信息
	var txnCount int64
	if err := database.DB.Model(&models.Transaction{}).
		Where("category_id = ?", cat.ID).
		Count(&txnCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if txnCount > 0 {
		Conflict(c, "该类别下仍有交易记录，请先删除相关交易")
		return
	}
	var budgetCount int64
	if err := database.DB.Model(&models.Budget{}).
		Where("category_id = ?", cat.ID).
		Count(&budgetCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if budgetCount > 0 {
		Conflict(c, "该类别下仍有预算，请先删除相关预算")
		return
	}

	if err := database.DB.Delete(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
