// internal/app/system/mailer/mailer.go
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is one outbound message with text and HTML alternatives.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers email over SMTP. With Enabled false it logs the
// message instead of sending, which is how local development runs.
type Mailer struct {
	Host    string
	Port    int
	User    string
	Pass    string
	From    string
	Enabled bool

	logger *zap.Logger
}

func New(host string, port int, user, pass, from string, enabled bool, logger *zap.Logger) *Mailer {
	return &Mailer{
		Host:    host,
		Port:    port,
		User:    user,
		Pass:    pass,
		From:    from,
		Enabled: enabled,
		logger:  logger,
	}
}

// Send delivers one email. The multipart body carries both the text and
// HTML renderings.
func (m *Mailer) Send(e Email) error {
	if !m.Enabled {
		m.logger.Info("mail delivery disabled, logging instead",
			zap.String("to", e.To),
			zap.String("subject", e.Subject),
			zap.String("body", e.TextBody))
		return nil
	}

	msg := buildMIME(m.From, e)
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	if err := smtp.SendMail(addr, auth, m.From, []string{e.To}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", e.To, err)
	}
	return nil
}

func buildMIME(from string, e Email) []byte {
	const boundary = "hb-mime-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(e.TextBody)
	b.WriteString("\r\n")

	if e.HTMLBody != "" {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(e.HTMLBody)
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
