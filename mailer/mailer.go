package mailer

import (
	"go-auth-api/config"
	"go-auth-api/logger"

	"gopkg.in/gomail.v2"
)

// SMTP delivers notifications directly through an SMTP relay.
type SMTP struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTP() *SMTP {
	cfg := config.AppConfig.Mail
	return &SMTP{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
		from:     cfg.From,
	}
}

func (m *SMTP) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(msg)
}

// Disabled is the fallback sender used when no mail transport is configured.
// Sends are logged and dropped so the calling flow still succeeds.
type Disabled struct{}

func (Disabled) Send(to, subject, body string) error {
	logger.Log.WithField("to", to).Warn("Mail transport is not configured. Email will not be sent.")
	return nil
}
