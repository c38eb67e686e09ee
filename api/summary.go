package api

import (
	"strconv"
	"time"

	"financy/middleware"
	"financy/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SummaryHandler 看板汇总处理器
type SummaryHandler struct {
	db *gorm.DB
}

// NewSummaryHandler 创建汇总处理器
func NewSummaryHandler(db *gorm.DB) *SummaryHandler {
	return &SummaryHandler{db: db}
}

// CategoryStat 按类别汇总的支出统计
type CategoryStat struct {
	CategoryID *uint   `json:"category_id"`
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Total      float64 `json:"total"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// GetSummary 获取月度汇总
// @Summary 获取月度汇总
// @Description 获取指定月份的收入/支出总额、结余以及按类别的支出分布，未指定时默认当前月份
// @Tags 汇总
// @Produce json
// @Security BearerAuth
// @Param month query int false "月份 (1-12)，默认当前月"
// @Param year query int false "年份，默认当前年"
// @Success 200 {object} Response "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	if v := c.Query("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			BadRequest(c, "month格式错误，应为 1-12")
			return
		}
		month = m
	}
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 2000 || y > 2100 {
			BadRequest(c, "year格式错误，应为4位数字（如：2024）")
			return
		}
		year = y
	}

	start, end, _ := filterDateRange(month, year)

	sumByType := func(txnType string) (float64, error) {
		var total float64
		err := h.db.Model(&models.Transaction{}).
			Where("user_id = ? AND type = ? AND date >= ? AND date <= ?", userID, txnType, start, end).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error
		return total, err
	}

	income, err := sumByType(models.TransactionTypeIncome)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	expense, err := sumByType(models.TransactionTypeExpense)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 按类别统计支出，未分类的交易归为一组
	var categoryStats []CategoryStat
	err = h.db.Model(&models.Transaction{}).
		Select("transactions.category_id, COALESCE(categories.name, '') as name, COALESCE(categories.color, '') as color, SUM(transactions.amount) as total, COUNT(*) as count").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ? AND transactions.date >= ? AND transactions.date <= ?",
			userID, models.TransactionTypeExpense, start, end).
		Group("transactions.category_id, categories.name, categories.color").
		Order("total DESC").
		Scan(&categoryStats).Error
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 计算每个类别的占比
	for i := range categoryStats {
		if categoryStats[i].Name == "" {
			categoryStats[i].Name = "未分类"
		}
		if expense > 0 {
			categoryStats[i].Percentage = (categoryStats[i].Total / expense) * 100
		}
	}

	Success(c, gin.H{
		"month":          month,
		"year":           year,
		"total_income":   income,
		"total_expense":  expense,
		"balance":        income - expense,
		"category_stats": categoryStats,
	})
}
