package api

import (
	"errors"
	"strconv"
	"strings"

	"financy/middleware"
	"financy/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler 类别处理器
type CategoryHandler struct {
	db *gorm.DB
}

// NewCategoryHandler 创建类别处理器
func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

// CreateCategoryRequest 创建类别请求
type CreateCategoryRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=50" example:"餐饮"`
	Color string `json:"color" binding:"omitempty,max=20" example:"#ef4444"`
}

// UpdateCategoryRequest 更新类别请求
type UpdateCategoryRequest struct {
	Name  string  `json:"name" binding:"omitempty,min=1,max=50" example:"餐饮"`
	Color *string `json:"color" binding:"omitempty,max=20" example:"#ef4444"`
}

// List 获取类别列表
// @Summary 获取类别列表
// @Description 获取当前用户的全部类别，按名称升序排列
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var list []models.Category
	if err := h.db.Where("user_id = ?", userID).Order("name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, list)
}

// Get 获取单个类别
// @Summary 获取单个类别
// @Description 根据ID获取类别详情，只能访问自己的类别
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response{data=models.Category} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "无权访问该类别"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	cat, err := findOwnedCategory(h.db, uint(id), userID)
	if err != nil {
		respondOwnershipError(c, err, "类别不存在", "无权访问该类别")
		return
	}

	Success(c, cat)
}

// Create 创建类别
// @Summary 创建类别
// @Description 创建新类别，同一用户下类别名称不可重复
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "请求参数错误或已存在同名类别"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [post]
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

	// 同名预检查，给出友好提示；数据库唯一索引兜底
	var existing models.Category
	if err := h.db.Where("user_id = ? AND name = ?", userID, req.Name).First(&existing).Error; err == nil {
		BadRequest(c, "已存在同名类别")
		return
	}

	color := req.Color
	if color == "" {
		color = "#64748b" // 默认灰色
	}

	cat := models.Category{
		Name:   req.Name,
		Color:  color,
		UserID: userID,
	}

	if err := h.db.Create(&cat).Error; err != nil {
		// 并发创建同名类别时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, "已存在同名类别")
			return
		}
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", cat)
}

// Update 更新类别
// @Summary 更新类别
// @Description 更新指定类别的名称或颜色，只能修改自己的类别
// @Tags 类别
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Param request body UpdateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 400 {object} Response "请求参数错误或已存在同名类别"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "无权修改该类别"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	cat, err := findOwnedCategory(h.db, uint(id), userID)
	if err != nil {
		respondOwnershipError(c, err, "类别不存在", "无权修改该类别")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			BadRequest(c, "名称不能为空")
			return
		}
		if req.Name != cat.Name {
			var existing models.Category
			if err := h.db.Where("user_id = ? AND name = ? AND id != ?", userID, req.Name, cat.ID).
				First(&existing).Error; err == nil {
				BadRequest(c, "已存在同名类别")
				return
			}
		}
		updates["name"] = req.Name
	}
	if req.Color != nil {
		color := *req.Color
		if color == "" {
			color = "#64748b" // 默认灰色
		}
		updates["color"] = color
	}
	if len(updates) == 0 {
		SuccessWithMessage(c, "无需更新", cat)
		return
	}

	if err := h.db.Model(cat).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			BadRequest(c, "已存在同名类别")
			return
		}
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", cat)
}

// Delete 删除类别
// @Summary 删除类别
// @Description 删除指定类别，引用该类别的交易会被置为无类别
// @Tags 类别
// @Produce json
// @Security BearerAuth
// @Param id path int true "类别ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "无效的ID"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "无权删除该类别"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	cat, err := findOwnedCategory(h.db, uint(id), userID)
	if err != nil {
		respondOwnershipError(c, err, "类别不存在", "无权删除该类别")
		return
	}

	// 同一事务内先解除交易对该类别的引用，避免悬挂引用
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("user_id = ? AND category_id = ?", userID, cat.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(cat).Error
	})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
