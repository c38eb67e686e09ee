package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"financy/middleware"
	"financy/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	db *gorm.DB
}

// NewExportHandler 创建导出处理器
func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{db: db}
}

// queryExportRange 解析时间范围参数并查询当前用户的交易记录
func (h *ExportHandler) queryExportRange(c *gin.Context) ([]models.Transaction, bool) {
	userID := middleware.GetCurrentUserID(c)

	startTimeStr := c.Query("start_time")
	endTimeStr := c.Query("end_time")

	if startTimeStr == "" || endTimeStr == "" {
		BadRequest(c, "请提供开始时间和结束时间")
		return nil, false
	}

	startTime, err := time.ParseInLocation("2006-01-02", startTimeStr, time.Local)
	if err != nil {
		BadRequest(c, "开始时间格式错误，应为: 2006-01-02")
		return nil, false
	}

	endTime, err := time.ParseInLocation("2006-01-02", endTimeStr, time.Local)
	if err != nil {
		BadRequest(c, "结束时间格式错误，应为: 2006-01-02")
		return nil, false
	}
	// 包含结束日期当天
	endTime = endTime.Add(24*time.Hour - time.Second)

	var list []models.Transaction
	if err := h.db.Preload("Category").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, startTime, endTime).
		Order("date DESC").
		Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return nil, false
	}

	return list, true
}

func transactionCategoryName(t *models.Transaction) string {
	if t.Category != nil {
		return t.Category.Name
	}
	return ""
}

// ExportCSV 导出交易记录为 CSV
// @Summary 导出交易记录为 CSV
// @Description 根据时间范围导出当前用户的交易记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	list, ok := h.queryExportRange(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	// UTF-8 BOM，避免 Excel 打开时中文乱码
	buf.WriteString("\xEF\xBB\xBF")

	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"日期", "标题", "类型", "金额", "类别"})
	for i := range list {
		t := &list[i]
		_ = w.Write([]string{
			t.Date.Format("2006-01-02 15:04:05"),
			t.Title,
			t.Type,
			fmt.Sprintf("%.2f", t.Amount),
			transactionCategoryName(t),
		})
	}
	w.Flush()

	filename := fmt.Sprintf("transactions_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出交易记录为 JSON
// @Summary 导出交易记录为 JSON
// @Description 根据时间范围导出当前用户的交易记录为 JSON
// @Tags 导出
// @Produce json
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {object} Response{data=[]models.Transaction} "导出成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/json [get]
func (h *ExportHandler) ExportJSON(c *gin.Context) {
	list, ok := h.queryExportRange(c)
	if !ok {
		return
	}
	Success(c, list)
}

// ExportExcel 导出交易记录为 Excel
// @Summary 导出交易记录为 Excel
// @Description 根据时间范围导出当前用户的交易记录为 xlsx 文件
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_time query string true "开始时间 (2024-01-01)"
// @Param end_time query string true "结束时间 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	list, ok := h.queryExportRange(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "交易记录"
	index, err := f.NewSheet(sheet)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成文件失败"))
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []interface{}{"日期", "标题", "类型", "金额", "类别"}
	_ = f.SetSheetRow(sheet, "A1", &headers)

	for i := range list {
		t := &list[i]
		row := []interface{}{
			t.Date.Format("2006-01-02 15:04:05"),
			t.Title,
			t.Type,
			t.Amount,
			transactionCategoryName(t),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetSheetRow(sheet, cell, &row)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "生成文件失败"))
		return
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
