// Package email delivers password-reset links over SMTP.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/majlis/internal/app/models"
)

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string // base URL of the web app, used to build links
}

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// ResetMailer sends reset links. Without an SMTP host it only logs them.
type ResetMailer struct {
	config SMTPConfig
	logger zerolog.Logger
	send   sendFunc
}

// NewResetMailer creates a mailer that sends through smtp.SendMail
func NewResetMailer(config SMTPConfig, logger zerolog.Logger) *ResetMailer {
	return &ResetMailer{
		config: config,
		logger: logger,
		send:   smtp.SendMail,
	}
}

// ResetURL is the link a user follows to choose a new password
func (m *ResetMailer) ResetURL(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(m.config.BaseURL, "/"), url.QueryEscape(token))
}

// SendPasswordReset mails the reset link to the account owner
func (m *ResetMailer) SendPasswordReset(ctx context.Context, user models.User, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	link := m.ResetURL(token)
	if m.config.Host == "" {
		m.logger.Warn().
			Str("toEmail", user.Email).
			Str("token", token).
			Str("resetURL", link).
			Msg("SMTP not configured - password reset email not sent. Use the token/URL above for testing.")
		return nil
	}

	body := fmt.Sprintf(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<p>Hello %s,</p>
		<p>We received a request to reset the password for your Majlis account.</p>
		<p><a href="%s">Choose a new password</a></p>
		<p>If you did not ask for this, you can ignore this email.</p>
	</div>
</body>
</html>`, user.Name, link)

	msg := buildMessage(m.config.From, user.Email, "Reset your Majlis password", body)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	addr := m.config.Host + ":" + strconv.Itoa(m.config.Port)
	if err := m.send(addr, auth, m.config.From, []string{user.Email}, msg); err != nil {
		m.logger.Error().Err(err).Str("server", addr).Msg("Failed to send password reset email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.logger.Info().Str("userID", user.ID).Msg("Password reset email sent")
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var sb strings.Builder
	headers := [][2]string{
		{"From", from},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, h := range headers {
		sb.WriteString(h[0] + ": " + h[1] + "\r\n")
	}
	sb.WriteString("\r\n")
	sb.WriteString(htmlBody)
	return []byte(sb.String())
}
