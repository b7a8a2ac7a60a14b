package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

const (
	SubjectVerifyEmail   = "Verify Your Email"
	SubjectResetPassword = "Reset Password"
)

//go:embed templates/*.html
var emailTemplates embed.FS

var mailTemplates = template.Must(template.ParseFS(emailTemplates, "templates/*.html"))

// Mailer delivers an HTML message. Send blocks until the provider accepts
// or rejects it.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// renderEmail executes one of the embedded link templates.
func renderEmail(name, link string) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, map[string]string{"Link": link}); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// DefaultSMTPTimeout bounds one whole SMTP exchange.
const DefaultSMTPTimeout = 10 * time.Second

// SMTPMailer sends through an SMTP relay, upgrading with STARTTLS when the
// relay offers it and using PLAIN auth when a username is set.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Timeout  time.Duration

	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		Timeout:  DefaultSMTPTimeout,
		dial:     (&net.Dialer{}).DialContext,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n"
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"%s%s", to, s.From, subject, mime, html))

	if err := s.deliver(ctx, to, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp send to %s: %w", to, ctxErr)
		}
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func (s *SMTPMailer) deliver(ctx context.Context, to string, msg []byte) error {
	conn, err := s.dial(ctx, "tcp", net.JoinHostPort(s.Host, s.Port))
	if err != nil {
		return err
	}
	defer conn.Close()
	// 超时或取消时关闭连接, 让阻塞的读写立即返回
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return err
		}
	}
	if s.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(s.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send to %s: %w", to, err)
	}
	return nil
}

// LogMailer only logs the envelope. Used in development.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, _ string) error {
	m.log.Info("email suppressed", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// loggingMailer records every delivery attempt without the body.
type loggingMailer struct {
	next Mailer
	log  *zap.Logger
}

// WithMailLogging wraps m so each attempt is logged with recipient and subject.
func WithMailLogging(m Mailer, log *zap.Logger) Mailer {
	return &loggingMailer{next: m, log: log}
}

func (m *loggingMailer) Send(ctx context.Context, to, subject, html string) error {
	err := m.next.Send(ctx, to, subject, html)
	if err != nil {
		m.log.Error("failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return err
	}
	m.log.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// NewMailer picks the transport named by driver.
func NewMailer(driver string, opts MailerOptions, log *zap.Logger) (Mailer, error) {
	switch strings.ToLower(driver) {
	case "smtp":
		m := NewSMTPMailer(opts.SMTPHost, opts.SMTPPort, opts.SMTPUser, opts.SMTPPass, opts.From)
		if opts.SMTPTimeout > 0 {
			m.Timeout = opts.SMTPTimeout
		}
		return WithMailLogging(m, log), nil
	case "resend":
		return WithMailLogging(NewResendMailer(opts.ResendAPIKey, opts.From), log), nil
	case "log":
		return NewLogMailer(log), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", driver)
	}
}

type MailerOptions struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
	SMTPTimeout  time.Duration
	ResendAPIKey string
	From         string
}
