package email

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendWelcomeEmail(toEmail, toName string) error
	SendConnectionRequestEmail(toEmail, toName, fromName string) error
	SendTemporaryPasswordEmail(toEmail, toName, password string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
	BaseURL   string // Base URL for the application
}

// EmailServiceImpl implements EmailService over SMTP
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	if config.Port == 465 {
		config.UseTLS = true
	}
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

func (s *EmailServiceImpl) configured() bool {
	return s.config.Host != "" && s.config.Username != "" && s.config.Password != ""
}

// SendWelcomeEmail greets a newly registered user
func (s *EmailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Msg("SMTP credentials not configured - welcome email not sent.")
		return nil
	}

	body := layout(fmt.Sprintf(`
				<p>Hello %s,</p>
				<p>Your MentorBridge account is ready. Complete your profile so students and alumni can find you.</p>
				<p><a href="%s">Open MentorBridge</a></p>`,
		html.EscapeString(toName), s.config.BaseURL))

	return s.sendHTMLEmail(toEmail, "Welcome to MentorBridge", body)
}

// SendConnectionRequestEmail notifies the receiver of a connection request
func (s *EmailServiceImpl) SendConnectionRequestEmail(toEmail, toName, fromName string) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("fromName", fromName).
			Msg("SMTP credentials not configured - connection request email not sent.")
		return nil
	}

	body := layout(fmt.Sprintf(`
				<p>Hello %s,</p>
				<p><strong>%s</strong> would like to connect with you on MentorBridge.</p>
				<p><a href="%s">Review the request</a></p>`,
		html.EscapeString(toName), html.EscapeString(fromName), s.config.BaseURL))

	return s.sendHTMLEmail(toEmail, fromName+" wants to connect", body)
}

// SendTemporaryPasswordEmail delivers credentials for accounts created by bulk upload
func (s *EmailServiceImpl) SendTemporaryPasswordEmail(toEmail, toName, password string) error {
	if !s.configured() {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Msg("SMTP credentials not configured - temporary password email not sent.")
		return nil
	}

	body := layout(fmt.Sprintf(`
				<p>Hello %s,</p>
				<p>An account was created for you on MentorBridge. Sign in with this temporary password and change it right away:</p>
				<p><strong>%s</strong></p>`,
		html.EscapeString(toName), html.EscapeString(password)))

	return s.sendHTMLEmail(toEmail, "Your MentorBridge account", body)
}

func layout(content string) string {
	return `
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">MentorBridge</h2>` + content + `
				<p>Best regards,<br>The MentorBridge Team</p>
			</div>
		</body>
		</html>
	`
}

// buildMessage renders headers and body in a stable order
func (s *EmailServiceImpl) buildMessage(toEmail, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", toEmail)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// sendHTMLEmail sends an HTML email
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	message := s.buildMessage(toEmail, subject, htmlBody)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		// smtp.SendMail upgrades with STARTTLS when the server offers it
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return nil
}
