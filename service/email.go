package service

import (
	"fmt"
	"log"

	"fintrack/config"
	"fintrack/models"

	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

// EmailService 邮件服务（预算超支提醒）
type EmailService struct {
	cfg *config.EmailConfig
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// SendBudgetAlert 发送预算超支提醒邮件
func (s *EmailService) SendBudgetAlert(toEmail string, status BudgetStatus) error {
	if !s.cfg.Enabled {
		return fmt.Errorf("邮件服务未启用，请配置 email.enabled=true")
	}

	subject := fmt.Sprintf("【记账助手】预算超支提醒 - %s", status.CategoryName)
	body := s.generateAlertBody(status)

	return s.sendEmail(toEmail, subject, body)
}

// generateAlertBody 生成提醒邮件内容
func (s *EmailService) generateAlertBody(status BudgetStatus) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #dc2626, #b91c1c); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 40px 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        .stat { background: #fef2f2; border-left: 4px solid #dc2626; padding: 15px; margin: 20px 0; border-radius: 4px; }
        .stat p { margin: 0 0 8px; color: #7f1d1d; font-size: 14px; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>💰 预算超支提醒</h1>
        </div>
        <div class="content">
            <p>您好，</p>
            <p>您在 <strong>%d 年 %d 月</strong> 的「%s %s」类别支出已超出预算。</p>
            <div class="stat">
                <p>预算金额: %s</p>
                <p>已花费: %s</p>
                <p>使用率: %s%%</p>
            </div>
            <p>建议及时检查本月支出，合理安排后续消费。</p>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿直接回复</p>
        </div>
    </div>
</body>
</html>`,
		status.Year, status.Month,
		status.CategoryIcon, status.CategoryName,
		status.Amount.StringFixed(2),
		status.Spent.StringFixed(2),
		status.PercentageUsed.StringFixed(2),
	)
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// MaybeSendBudgetAlert 支出入账后检查对应类别的当月预算，超支则发送提醒邮件
// 尽力而为：未启用邮件、用户令牌无邮箱、或查询/发送失败都只记录日志，不影响主流程
func MaybeSendBudgetAlert(db *gorm.DB, userID, userEmail string, categoryID uint, month, year int) {
	cfg := config.GlobalConfig
	if cfg == nil || !cfg.Email.Enabled || userEmail == "" {
		return
	}

	var b models.Budget
	err := db.Preload("Category").
		Where("user_id = ? AND category_id = ? AND month = ? AND year = ?",
			userID, categoryID, month, year).
		First(&b).Error
	if err != nil {
		// 没有设置预算时无需提醒
		return
	}

	status, err := StatusOf(db, b)
	if err != nil {
		log.Printf("预算提醒: 计算使用状态失败: %v", err)
		return
	}
	if status.Status != models.BudgetStatusOver {
		return
	}

	if err := NewEmailService(&cfg.Email).SendBudgetAlert(userEmail, status); err != nil {
		log.Printf("预算提醒: %v", err)
	}
}
