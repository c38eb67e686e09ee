package service

import (
	"fmt"

	"financy/config"

	"gopkg.in/gomail.v2"
)

// EmailService 邮件服务
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendPasswordResetEmail 发送密码重置验证码邮件
func (s *EmailService) SendPasswordResetEmail(toEmail, name, code string) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 email.enabled=true")
	}

	subject := "【Financy】密码重置验证码"
	body := s.generateResetEmailBody(name, code)

	return s.sendEmail(toEmail, subject, body)
}

// generateResetEmailBody 生成重置邮件内容
func (s *EmailService) generateResetEmailBody(name, code string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #2563eb, #1d4ed8); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .code { text-align: center; font-size: 32px; letter-spacing: 8px; font-weight: 700; color: #2563eb; margin: 24px 0; }
        .warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0; border-radius: 4px; }
        .warning p { margin: 0; color: #856404; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 Financy</h1>
        </div>
        <div class="content">
            <p>尊敬的 <strong>%s</strong>，您好！</p>
            <p>我们收到了您的密码重置请求，您的验证码为：</p>
            <p class="code">%s</p>
            <div class="warning">
                <p>⚠️ 验证码有效期为 <strong>10 分钟</strong>，请尽快完成密码重置。</p>
                <p>⚠️ 如果您没有请求重置密码，请忽略此邮件。</p>
            </div>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
            <p>© Financy - 您的个人财务管理助手</p>
        </div>
    </div>
</body>
</html>
`, name, code)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}
