package api

import (
	"net/http"
	"time"

	"financy/config"
	"financy/models"
	"financy/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// PasswordResetHandler 密码重置处理器
type PasswordResetHandler struct {
	db           *gorm.DB
	emailService *service.EmailService
}

// NewPasswordResetHandler 创建密码重置处理器
func NewPasswordResetHandler(cfg *config.Config, db *gorm.DB) *PasswordResetHandler {
	return &PasswordResetHandler{
		db:           db,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// RequestResetRequest 请求密码重置
type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email" example:"test@example.com"`
}

// RequestReset 请求密码重置（发送验证码）
// @Summary 请求密码重置
// @Description 通过邮箱发送密码重置验证码，10分钟内有效
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RequestResetRequest true "密码重置请求"
// @Success 200 {object} Response "验证码已发送"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/auth/password/request-reset [post]
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请输入有效的邮箱地址")
		return
	}

	// 查找用户
	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// 为了安全，即使用户不存在也返回成功
		SuccessWithMessage(c, "如果该邮箱已注册，您将收到密码重置验证码", nil)
		return
	}

	// 检查是否有未使用的有效验证码（防止频繁发送）
	var existingReset models.PasswordReset
	if err := h.db.Where("user_id = ? AND used = ? AND expires_at > ?",
		user.ID, false, time.Now()).First(&existingReset).Error; err == nil {
		// 如果距离上次发送不到1分钟，拒绝发送
		if time.Since(existingReset.CreatedAt) < time.Minute {
			Error(c, http.StatusTooManyRequests, "请求过于频繁，请稍后再试")
			return
		}
		// 使旧验证码失效
		h.db.Model(&existingReset).Update("used", true)
	}

	// 生成6位数字验证码
	code, err := models.GenerateVerificationCode()
	if err != nil {
		InternalError(c, "生成验证码失败")
		return
	}

	passwordReset := models.PasswordReset{
		UserID:    user.ID,
		Token:     code,
		Email:     req.Email,
		ExpiresAt: time.Now().Add(10 * time.Minute), // 10分钟有效期
	}

	if err := h.db.Create(&passwordReset).Error; err != nil {
		InternalError(c, "创建重置验证码失败")
		return
	}

	// 发送邮件
	if err := h.emailService.SendPasswordResetEmail(req.Email, user.Name, code); err != nil {
		h.db.Delete(&passwordReset)
		InternalError(c, SafeErrorMessage(err, "邮件发送失败"))
		return
	}

	SuccessWithMessage(c, "密码重置验证码已发送，请查收邮件", nil)
}

// VerifyResetCodeRequest 验证重置验证码
type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email" example:"test@example.com"`
	Code  string `json:"code" binding:"required,len=6" example:"123456"`
}

// VerifyResetCode 验证重置验证码
// @Summary 验证重置验证码
// @Description 验证密码重置验证码是否正确
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body VerifyResetCodeRequest true "验证请求"
// @Success 200 {object} Response "验证成功"
// @Failure 400 {object} Response "验证码错误或已过期"
// @Router /api/v1/auth/password/verify-code [post]
func (h *PasswordResetHandler) VerifyResetCode(c *gin.Context) {
	var req VerifyResetCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误")
		return
	}

	var passwordReset models.PasswordReset
	if err := h.db.Where("email = ? AND token = ?", req.Email, req.Code).First(&passwordReset).Error; err != nil {
		BadRequest(c, "验证码错误")
		return
	}

	if !passwordReset.IsValid() {
		if passwordReset.Used {
			BadRequest(c, "验证码已被使用")
		} else {
			BadRequest(c, "验证码已过期，请重新获取")
		}
		return
	}

	SuccessWithMessage(c, "验证成功", nil)
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email" example:"test@example.com"`
	Code        string `json:"code" binding:"required,len=6" example:"123456"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50" example:"newpassword123"`
}

// ResetPassword 重置密码
// @Summary 重置密码
// @Description 使用邮箱验证码重置密码
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "重置密码请求"
// @Success 200 {object} Response "密码重置成功"
// @Failure 400 {object} Response "验证码错误或已过期"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/auth/password/reset [post]
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误")
		return
	}

	// 查找验证码
	var passwordReset models.PasswordReset
	if err := h.db.Where("email = ? AND token = ?", req.Email, req.Code).First(&passwordReset).Error; err != nil {
		BadRequest(c, "验证码错误")
		return
	}

	if !passwordReset.IsValid() {
		if passwordReset.Used {
			BadRequest(c, "验证码已被使用")
		} else {
			BadRequest(c, "验证码已过期，请重新获取")
		}
		return
	}

	// 加密新密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "密码加密失败")
		return
	}

	// 更新密码
	if err := h.db.Model(&models.User{}).Where("id = ?", passwordReset.UserID).
		Update("password", string(hashedPassword)).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新密码失败"))
		return
	}

	// 使该用户所有未使用的重置验证码失效
	h.db.Model(&models.PasswordReset{}).
		Where("user_id = ? AND used = ?", passwordReset.UserID, false).
		Update("used", true)

	SuccessWithMessage(c, "密码重置成功，请使用新密码登录", nil)
}
