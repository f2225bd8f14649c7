package services

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/internal-chat/backend/internal/config"
)

// EmailService sends auth mail over SMTP. Delivery failures are logged, never
// surfaced: mail must not fail registration or password reset.
type EmailService struct {
	addr        string
	auth        smtp.Auth
	from        string
	frontendURL string
}

func NewEmailService(cfg *config.Config) *EmailService {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &EmailService{
		addr:        cfg.SMTPHost + ":" + cfg.SMTPPort,
		auth:        auth,
		from:        cfg.MailFrom,
		frontendURL: cfg.FrontendURL,
	}
}

func (s *EmailService) SendVerificationEmail(to, token string) {
	subject := "Email Verification - Internal Chat"
	verificationURL := s.frontendURL + "/verify-email?token=" + token

	body := "Welcome to Internal Chat!\n\n" +
		"Please click the link below to verify your email address:\n" +
		verificationURL + "\n\n" +
		"This link will expire in 24 hours.\n\n" +
		"If you didn't create an account, please ignore this email."

	if err := s.send(to, subject, body); err != nil {
		slog.Error("failed to send verification email", "to", to, "error", err)
		return
	}
	slog.Info("verification email sent", "to", to)
}

func (s *EmailService) SendPasswordResetEmail(to, token string) {
	subject := "Password Reset Request - Internal Chat"
	resetURL := s.frontendURL + "/reset-password?token=" + token

	body := "Hello,\n\n" +
		"We received a request to reset your password.\n\n" +
		"Please click the link below to reset your password:\n" +
		resetURL + "\n\n" +
		"This link will expire in 1 hour.\n\n" +
		"If you didn't request a password reset, please ignore this email."

	if err := s.send(to, subject, body); err != nil {
		slog.Error("failed to send password reset email", "to", to, "error", err)
		return
	}
	slog.Info("password reset email sent", "to", to)
}

func (s *EmailService) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	return smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg))
}
