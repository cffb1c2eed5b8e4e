package service

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/Delerious28/Andrew-webshop2-sub000/config"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/common"
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/util"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// EmailService 负责发送事务性邮件：验证链接、密码重置、订单确认。
// 所有邮件都异步发送，失败只记录日志，不影响主流程。
type EmailService struct {
	smtpHost    string
	smtpPort    int
	username    string
	password    string
	frontendURL string
}

// NewEmailService 创建一个新的 EmailService 实例
func NewEmailService() *EmailService {
	return &EmailService{
		smtpHost:    config.AppConfig.SMTPHost,
		smtpPort:    config.AppConfig.SMTPPort,
		username:    config.AppConfig.SMTPUsername,
		password:    config.AppConfig.SMTPPassword,
		frontendURL: config.AppConfig.FrontendURL,
	}
}

// SendVerificationEmail 发送邮箱验证链接
func (s *EmailService) SendVerificationEmail(email, username, token string) error {
	verificationLink := fmt.Sprintf("%s/verify-email?token=%s", s.frontendURL, token)

	subject := "验证您的邮箱 - Remoof"
	body := fmt.Sprintf(`
	<p>亲爱的 %s，</p>
	<p>欢迎来到 Remoof！请点击以下链接验证您的邮箱：</p>
	<p><a href="%s">%s</a></p>
	<p>如果这不是您本人操作，请忽略此邮件。</p>`, username, verificationLink, verificationLink)

	s.sendEmailAsync(email, subject, body)
	return nil
}

// SendPasswordResetEmail 发送密码重置链接
func (s *EmailService) SendPasswordResetEmail(email, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)

	subject := "重置您的密码 - Remoof"
	body := fmt.Sprintf(`
	<p>亲爱的用户，</p>
	<p>我们收到了您的密码重置请求。如果这不是您本人操作，请忽略此邮件。</p>
	<p>要重置您的密码，请点击以下链接：</p>
	<p><a href="%s">%s</a></p>
	<p>此链接将在1小时后过期。</p>`, resetLink, resetLink)

	s.sendEmailAsync(email, subject, body)
	return nil
}

// SendOrderConfirmationEmail 发送订单确认邮件
func (s *EmailService) SendOrderConfirmationEmail(email, orderNumber string, totalCents int64) error {
	subject := fmt.Sprintf("订单确认 %s - Remoof", orderNumber)
	body := fmt.Sprintf(`
	<p>感谢您的购买！</p>
	<p>订单号：%s</p>
	<p>支付金额：%.2f</p>
	<p>我们会在发货后通知您。</p>`, orderNumber, float64(totalCents)/100.0)

	s.sendEmailAsync(email, subject, body)
	return nil
}

func (s *EmailService) sendEmailAsync(to, subject, body string) {
	go func() {
		err := common.WithRetry(func() error {
			return s.sendEmail(to, subject, body)
		}, 3)
		if err != nil {
			util.Logger.Error("异步发送邮件失败", zap.Error(err), zap.String("to", to))
		}
	}()
}

func (s *EmailService) sendEmail(to, subject, body string) error {
	util.Logger.Info("开始发送邮件",
		zap.String("to", to),
		zap.String("subject", subject))

	m := mail.NewMessage()
	m.SetHeader("From", s.username)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	d.Timeout = 20 * time.Second
	d.SSL = true
	d.TLSConfig = &tls.Config{ServerName: s.smtpHost}

	if err := d.DialAndSend(m); err != nil {
		util.Logger.Error("发送邮件失败", zap.Error(err))
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	util.Logger.Info("邮件发送成功", zap.String("to", to))
	return nil
}
