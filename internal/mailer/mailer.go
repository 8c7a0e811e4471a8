package mailer

import (
	"context" // Request-scoped cancellation
	"fmt"     // Message formatting

	"campus_voting/internal/config" // Application configuration

	"github.com/sirupsen/logrus"  // Logging
	"github.com/wneessen/go-mail" // SMTP delivery
)

// Mailer delivers one-time verification codes
type Mailer interface {
	SendOTP(ctx context.Context, to, code, purpose string) error
}

// New picks SMTP delivery when a host is configured, logging otherwise
func New(cfg *config.Config) (Mailer, error) {
	if cfg.SMTPHost == "" {
		logrus.Warn("SMTP_HOST not set, verification codes will only be logged")
		return LogMailer{}, nil
	}
	opts := []mail.Option{mail.WithPort(cfg.SMTPPort), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPass),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.SMTPFrom}, nil
}

// SMTPMailer sends codes through an SMTP relay
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// SendOTP emails the code to the voter
func (m *SMTPMailer) SendOTP(ctx context.Context, to, code, purpose string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(Subject(purpose))
	msg.SetBodyString(mail.TypeTextPlain, Body(code, purpose))
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// LogMailer writes codes to the log, for development
type LogMailer struct{}

// SendOTP logs the code
func (LogMailer) SendOTP(_ context.Context, to, code, purpose string) error {
	logrus.WithFields(logrus.Fields{
		"to":      to,
		"purpose": purpose,
		"code":    code,
	}).Info("Verification code")
	return nil
}

// Subject is the email subject for a verification purpose
func Subject(purpose string) string {
	if purpose == "register" {
		return "Confirm your voter registration"
	}
	return "Your voting login code"
}

// Body is the plain text email body
func Body(code, purpose string) string {
	action := "log in"
	if purpose == "register" {
		action = "complete your registration"
	}
	return fmt.Sprintf("Your verification code is %s.\n\nEnter it to %s. It expires shortly; if you did not request it, ignore this email.\n", code, action)
}
