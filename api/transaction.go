package api

import (
	"strconv"
	"strings"
	"time"

	"financy/middleware"
	"financy/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TransactionHandler 交易记录处理器
type TransactionHandler struct {
	db *gorm.DB
}

// NewTransactionHandler 创建交易记录处理器
func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{db: db}
}

// CreateTransactionRequest 创建交易请求
type CreateTransactionRequest struct {
	Title      string   `json:"title" binding:"required,min=1,max=100" example:"午餐"`
	Amount     *float64 `json:"amount" binding:"required,gte=0" example:"39.9"`
	Type       string   `json:"type" binding:"required,oneof=income expense" example:"expense"`
	Date       string   `json:"date" binding:"required" example:"2024-01-15 12:30:00"`
	CategoryID *uint    `json:"category_id" example:"1"`
}

// UpdateTransactionRequest 更新交易请求，仅更新出现的字段
type UpdateTransactionRequest struct {
	Title      string   `json:"title" binding:"omitempty,min=1,max=100" example:"午餐"`
	Amount     *float64 `json:"amount" binding:"omitempty,gte=0" example:"39.9"`
	Type       string   `json:"type" binding:"omitempty,oneof=income expense" example:"expense"`
	Date       string   `json:"date" example:"2024-01-15 12:30:00"`
	CategoryID *uint    `json:"category_id" example:"1"`
}

// TransactionListRequest 交易列表筛选条件，各字段均可选，同时出现时取交集
type TransactionListRequest struct {
	Search     string `form:"search" example:"午餐"`
	Type       string `form:"type" binding:"omitempty,oneof=income expense" example:"expense"`
	CategoryID uint   `form:"category_id" example:"1"`
	Month      int    `form:"month" binding:"omitempty,min=1,max=12" example:"2"`
	Year       int    `form:"year" example:"2024"`
	Page       int    `form:"page" example:"1"`
	Limit      int    `form:"limit" example:"10"`
}

// filterDateRange 计算筛选的时间区间
// month+year → 该月整月（含月末最后一毫秒，月长和闰年由 AddDate 处理）；
// 仅 year → 全年；仅 month → 不限制时间
func filterDateRange(month, year int) (start, end time.Time, ok bool) {
	switch {
	case year > 0 && month > 0:
		start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
		end = start.AddDate(0, 1, 0).Add(-time.Millisecond)
		return start, end, true
	case year > 0:
		start = time.Date(year, 1, 1, 0, 0, 0, 0, time.Local)
		end = time.Date(year+1, 1, 1, 0, 0, 0, 0, time.Local).Add(-time.Millisecond)
		return start, end, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// applyTransactionFilters 在已按 user_id 限定的查询上叠加筛选条件
func applyTransactionFilters(query *gorm.DB, req *TransactionListRequest) *gorm.DB {
	// 空字符串视为未筛选
	if s := strings.TrimSpace(req.Search); s != "" {
		query = query.Where("title LIKE ?", "%"+s+"%")
	}
	if req.Type != "" {
		query = query.Where("type = ?", req.Type)
	}
	if req.CategoryID != 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if start, end, ok := filterDateRange(req.Month, req.Year); ok {
		query = query.Where("date >= ? AND date <= ?", start, end)
	}
	return query
}

// parseTransactionDate 解析交易时间，支持带时间和仅日期两种格式
func parseTransactionDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

// List 获取交易列表
// @Summary 获取交易列表
// @Description 获取当前用户的交易记录，支持标题搜索、类型、类别、月份/年份筛选和分页，按交易时间倒序排列
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param search query string false "标题模糊搜索"
// @Param type query string false "交易类型" Enums(income,expense)
// @Param category_id query int false "类别ID"
// @Param month query int false "月份 (1-12)，需与 year 同时提供才生效"
// @Param year query int false "年份，如 2024"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	pg := NewPagination(req.Page, req.Limit)

	// 总数和列表使用完全相同的筛选条件
	query := applyTransactionFilters(
		h.db.Model(&models.Transaction{}).Where("user_id = ?", userID), &req)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var list []models.Transaction
	if err := query.Preload("Category").
		Order("date DESC").
		Offset(pg.Offset).
		Limit(pg.Limit).
		Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:      total,
		Page:       pg.Page,
		PageSize:   pg.Limit,
		TotalPages: pg.TotalPages(total),
		List:       list,
	})
}

// Get 获取单条交易
// @Summary 获取单条交易
// @Description 根据ID获取交易详情，只能访问自己的交易
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "无权访问该交易"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	txn, err := findOwnedTransaction(h.db, uint(id), userID)
	if err != nil {
		respondOwnershipError(c, err, "交易不存在", "无权访问该交易")
		return
	}

	Success(c, txn)
}

// Create 创建交易
// @Summary 创建交易
// @Description 创建一条交易记录；指定类别时，该类别必须属于当前用户
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "无权使用该类别"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	date, err := parseTransactionDate(req.Date)
	if err != nil {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	// 类别归属校验，不通过则整个操作失败，不产生部分写入
	var category *models.Category
	if req.CategoryID != nil {
		category, err = findOwnedCategory(h.db, *req.CategoryID, userID)
		if err != nil {
			respondOwnershipError(c, err, "类别不存在", "无权使用该类别")
			return
		}
	}

	txn := models.Transaction{
		Title:      strings.TrimSpace(req.Title),
		Amount:     *req.Amount,
		Type:       req.Type,
		Date:       date,
		CategoryID: req.CategoryID,
		UserID:     userID,
	}

	if err := h.db.Create(&txn).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}

	// 归属校验时已加载类别，直接挂到返回值上
	txn.Category = category
	SuccessWithMessage(c, "创建成功", txn)
}

// Update 更新交易
// @Summary 更新交易
// @Description 更新指定的交易记录，只能修改自己的交易；更换类别时新类别必须属于当前用户
// @Tags 交易
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Param request body UpdateTransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "无权修改该交易"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	txn, err := findOwnedTransaction(h.db, uint(id), userID)
	if err != nil {
		respondOwnershipError(c, err, "交易不存在", "无权修改该交易")
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = strings.TrimSpace(req.Title)
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Date != "" {
		date, err := parseTransactionDate(req.Date)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		updates["date"] = date
	}
	if req.CategoryID != nil {
		// 新类别同样要求归属当前用户
		if _, err := findOwnedCategory(h.db, *req.CategoryID, userID); err != nil {
			respondOwnershipError(c, err, "类别不存在", "无权使用该类别")
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if len(updates) == 0 {
		SuccessWithMessage(c, "无需更新", txn)
		return
	}

	if err := h.db.Model(txn).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	// 重新获取更新后的记录
	if err := h.db.Preload("Category").First(txn, txn.ID).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", txn)
}

// Delete 删除交易
// @Summary 删除交易
// @Description 删除指定的交易记录，只能删除自己的交易
// @Tags 交易
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "无效的ID"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "无权删除该交易"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	txn, err := findOwnedTransaction(h.db, uint(id), userID)
	if err != nil {
		respondOwnershipError(c, err, "交易不存在", "无权删除该交易")
		return
	}

	if err := h.db.Delete(txn).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
