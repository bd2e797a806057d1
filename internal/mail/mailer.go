package mail

import (
	gomail "gopkg.in/gomail.v2"

	"github.com/tunepulse/tunepulse-api/internal/config"
)

// Mailer sends transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers through an SMTP relay via gomail. Constructed once at
// process start and injected; never a module-level singleton.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds the mailer from config.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers a single HTML message.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}
