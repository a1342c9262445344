package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sahilchouksey/mentor-hub-api/config"
)

// Message is one rendered notification for one recipient.
type Message struct {
	Channel string
	To      string
	Name    string
	Subject string
	Body    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// EmailService handles sending emails via SMTP
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailService creates a new email service instance
func NewEmailService(env *config.EnviornmentVariable) *EmailService {
	return &EmailService{
		host:     env.SMTP_HOST,
		port:     env.SMTP_PORT,
		username: env.SMTP_USERNAME,
		password: env.SMTP_PASSWORD,
		from:     env.SMTP_FROM,
	}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// Send delivers msg over SMTP.
func (e *EmailService) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.sendEmail(msg.To, msg.Subject, msg.Body)
}

// sendEmail sends an email using SMTP with TLS
func (e *EmailService) sendEmail(to, subject, body string) error {
	// Build the email message with proper headers
	headers := [][2]string{
		{"From", fmt.Sprintf("Mentor Hub <%s>", e.from)},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
	}

	var message strings.Builder
	for _, h := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(&tls.Config{ServerName: e.host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}
	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return conn.Quit()
}

// LogSender only logs messages. It backs every channel that has no real transport
// configured (sms, push, and email without SMTP credentials).
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info("notification dispatched", "channel", msg.Channel, "to", msg.To, "subject", msg.Subject)
	return nil
}

// NewSender picks SMTP when configured and falls back to logging.
func NewSender(env *config.EnviornmentVariable) Sender {
	email := NewEmailService(env)
	if email.IsConfigured() {
		return &channelSender{email: email, fallback: LogSender{}}
	}
	log.Warn("SMTP not configured, notifications will only be logged")
	return LogSender{}
}

type channelSender struct {
	email    Sender
	fallback Sender
}

func (s *channelSender) Send(ctx context.Context, msg Message) error {
	if msg.Channel == "email" {
		return s.email.Send(ctx, msg)
	}
	return s.fallback.Send(ctx, msg)
}
