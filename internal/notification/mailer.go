package notification

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"ms-marketplace/internal/config"
	"ms-marketplace/internal/logger"

	qrcode "github.com/skip2/go-qrcode"
)

// Mailer sends marketplace email over SMTP. Status emails carry an inline QR
// code of the order number for pickup and support lookups.
type Mailer struct {
	Cfg    config.EmailConfig
	Logger *logger.Logger
}

func NewMailer(cfg config.EmailConfig, log *logger.Logger) *Mailer {
	return &Mailer{Cfg: cfg, Logger: log}
}

func (m *Mailer) Send(to string, content EmailContent) error {
	msg, err := m.buildMessage(to, content)
	if err != nil {
		return err
	}

	addr := m.Cfg.SMTPHost + ":" + m.Cfg.SMTPPort
	var auth smtp.Auth
	if m.Cfg.Username != "" {
		auth = smtp.PlainAuth("", m.Cfg.Username, m.Cfg.Password, m.Cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, m.Cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	m.Logger.LogMail("SENT", to, content.Subject)
	return nil
}

// SendPasswordReset satisfies the auth component's mailer interface.
func (m *Mailer) SendPasswordReset(email, link string) error {
	return m.Send(email, RenderPasswordResetEmail(link))
}

const mimeBoundary = "marketly-mail-boundary"

func (m *Mailer) buildMessage(to string, content EmailContent) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.Cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", content.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if !content.AttachQR {
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(content.HTMLBody)
		return []byte(b.String()), nil
	}

	png, err := qrcode.Encode(content.QRData, qrcode.Medium, 160)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	fmt.Fprintf(&b, "Content-Type: multipart/related; boundary=%s\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(content.HTMLBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: image/png\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	b.WriteString("Content-ID: <order-qr>\r\n\r\n")
	b.WriteString(base64.StdEncoding.EncodeToString(png))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String()), nil
}
