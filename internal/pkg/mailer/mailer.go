package mailer

import (
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// Conf holds SMTP delivery configuration.
type Conf struct {
	Host     string `toml:"host" json:"host"`
	Port     int    `toml:"port" json:"port"`
	Username string `toml:"username" json:"username"`
	Password string `toml:"password" json:"password"`
	From     string `toml:"from" json:"from"`
}

// ISender delivers one templated email. Implementations must return
// delivery errors rather than swallow them: a failed invitation changes how
// the batch pass records the row.
type ISender interface {
	Send(templateName, recipient, replyTo, subject string, vars map[string]interface{}) error
}

// SMTPSender renders html templates and delivers them over SMTP.
type SMTPSender struct {
	cfg       Conf
	templates *template.Template
}

func NewSMTPSender(cfg Conf) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("from address is required")
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &SMTPSender{cfg: cfg, templates: templates}, nil
}

func (s *SMTPSender) Send(templateName, recipient, replyTo, subject string, vars map[string]interface{}) error {
	var body strings.Builder
	if err := s.templates.ExecuteTemplate(&body, templateName, vars); err != nil {
		return fmt.Errorf("rendering %s: %w", templateName, err)
	}

	var msg strings.Builder
	msg.WriteString("From: " + s.cfg.From + "\r\n")
	msg.WriteString("To: " + recipient + "\r\n")
	if replyTo != "" {
		msg.WriteString("Reply-To: " + replyTo + "\r\n")
	}
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body.String())

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending %s to %s: %w", templateName, recipient, err)
	}
	return nil
}
