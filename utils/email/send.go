package email

import (
	"gopkg.in/gomail.v2"
)

// 发件人展示名优先使用配置的 Identity，未配置时退回账号名
func fromAddress() string {
	if globalConfig.SMTP.Identity != "" {
		return globalConfig.SMTP.Identity
	}
	return globalConfig.SMTP.UserName
}

func SendHtml(email string, subject string, htmlContent string) error {
	msg := gomail.NewMessage()

	msg.SetHeader("From", fromAddress())
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", subject)

	msg.SetBody("text/html", htmlContent)

	dialer := gomail.NewDialer(
		globalConfig.SMTP.Host,
		globalConfig.SMTP.Port,
		globalConfig.SMTP.UserName,
		globalConfig.SMTP.Password)

	if err := dialer.DialAndSend(msg); err != nil {
		return err
	}

	return nil
}
