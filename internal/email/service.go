package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"

	"github.com/heraldhq/herald-api/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

// NewService returns an SMTP-backed sender, or a no-op sender when email
// is disabled in config so local setups work without a mail server.
func NewService(cfg config.EmailConfig, logger zerolog.Logger) Service {
	if !cfg.Enabled {
		return &noopService{logger: logger}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *smtpService) SendWelcome(ctx context.Context, to, name string) error {
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your account is ready. Grab your embed snippet from the dashboard and drop it into your site to start publishing announcements.</p>",
		name,
	)
	return s.send(to, "Welcome to Herald", body)
}

func (s *smtpService) SendPasswordReset(ctx context.Context, to, token string) error {
	body := fmt.Sprintf(
		"<p>A password reset was requested for your account.</p><p>Reset code: <strong>%s</strong></p><p>If this wasn't you, ignore this email.</p>",
		token,
	)
	return s.send(to, "Reset your Herald password", body)
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	return s.send(to, subject, content)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopService struct {
	logger zerolog.Logger
}

func (s *noopService) SendWelcome(ctx context.Context, to, name string) error {
	s.logger.Debug().Str("to", to).Msg("email disabled, skipping welcome email")
	return nil
}

func (s *noopService) SendPasswordReset(ctx context.Context, to, token string) error {
	s.logger.Debug().Str("to", to).Msg("email disabled, skipping password reset email")
	return nil
}

func (s *noopService) SendCustom(ctx context.Context, to, subject, content string) error {
	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("email disabled, skipping email")
	return nil
}
