package providers

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"
)

const boundary = "sentiview-report-boundary"

// SMTPSender sends emails via SMTP
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send sends an email via SMTP
func (s *SMTPSender) Send(to, subject, htmlBody, plainBody string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	msg := BuildMessage(s.from, to, subject, htmlBody, plainBody, time.Now())

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// BuildMessage assembles a multipart/alternative message with a plain text
// part followed by an HTML part.
func BuildMessage(from, to, subject, htmlBody, plainBody string, date time.Time) []byte {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject)))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", date.Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary))
	msg.WriteString("\r\n")

	writePart(&msg, "text/plain", plainBody)
	writePart(&msg, "text/html", htmlBody)

	msg.WriteString("--" + boundary + "--\r\n")
	return []byte(msg.String())
}

func writePart(msg *strings.Builder, contentType, body string) {
	msg.WriteString("--" + boundary + "\r\n")
	msg.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"utf-8\"\r\n", contentType))
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")
}
