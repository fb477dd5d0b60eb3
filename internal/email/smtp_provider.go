package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"taskflow_backend/internal/config"
)

type smtpProvider struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPProvider(cfg *config.Config) (Provider, error) {
	e := cfg.Email
	if e.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is not configured")
	}

	from := e.FromEmail
	if e.FromName != "" {
		from = fmt.Sprintf("%s <%s>", e.FromName, e.FromEmail)
	}
	return &smtpProvider{
		dialer: gomail.NewDialer(e.SMTPHost, e.SMTPPort, e.SMTPUsername, e.SMTPPassword),
		from:   from,
	}, nil
}

func (p *smtpProvider) Send(msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.HTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	return nil
}
