package sink

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"

	"github.com/segubroker/cotizador/config"
)

// EmailSink sends plain-text notifications over SMTP. Every send runs
// under one connection deadline covering dial, handshake and delivery, so
// a stalled mail host can never pin the fire-and-forget goroutine.
type EmailSink struct {
	host    string
	port    int
	user    string
	pass    string
	to      string
	timeout time.Duration
}

// NewEmailSink creates a sink from the SMTP portion of the sink config.
func NewEmailSink(cfg config.SinkConfig) *EmailSink {
	return &EmailSink{
		host:    cfg.SMTPHost,
		port:    cfg.SMTPPort,
		user:    cfg.SMTPUser,
		pass:    cfg.SMTPPass,
		to:      cfg.EmailTo,
		timeout: cfg.Timeout,
	}
}

// Send delivers one notification. Best-effort: the caller logs failures
// and moves on.
func (s *EmailSink) Send(subject, text string) error {
	mail := email.NewEmail()
	mail.From = s.user
	mail.To = []string{s.to}
	mail.Subject = subject
	mail.Text = []byte(text)

	raw, err := mail.Bytes()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	// One deadline bounds the whole SMTP conversation.
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		return err
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if s.user != "" {
		if err := c.Auth(smtp.PlainAuth("", s.user, s.pass, s.host)); err != nil {
			return err
		}
	}

	if err := c.Mail(s.user); err != nil {
		return err
	}
	if err := c.Rcpt(s.to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
