package api

import (
	"errors"

	"financy/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 归属校验的两种失败结果必须可区分：
// 记录不存在 vs 记录属于其他用户
var (
	ErrNotFound  = errors.New("记录不存在")
	ErrForbidden = errors.New("无权访问该记录")
)

// findOwnedTransaction 按ID加载交易并校验归属，成功时返回记录本身避免二次查询
func findOwnedTransaction(db *gorm.DB, id, userID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := db.Preload("Category").First(&txn, id).Error; err != nil {
		return nil, ErrNotFound
	}
	if txn.UserID != userID {
		return nil, ErrForbidden
	}
	return &txn, nil
}

// findOwnedCategory 按ID加载类别并校验归属
func findOwnedCategory(db *gorm.DB, id, userID uint) (*models.Category, error) {
	var cat models.Category
	if err := db.First(&cat, id).Error; err != nil {
		return nil, ErrNotFound
	}
	if cat.UserID != userID {
		return nil, ErrForbidden
	}
	return &cat, nil
}

// respondOwnershipError 将归属校验错误映射为 404/403 响应
func respondOwnershipError(c *gin.Context, err error, notFoundMsg, forbiddenMsg string) {
	if errors.Is(err, ErrForbidden) {
		Forbidden(c, forbiddenMsg)
		return
	}
	NotFound(c, notFoundMsg)
}
