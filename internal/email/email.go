package email

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"consulting-os/internal/config"
)

// Service handles email operations
type Service struct {
	config *config.EmailConfig
}

// NewService creates a new email service
func NewService(cfg *config.EmailConfig) *Service {
	return &Service{
		config: cfg,
	}
}

// SendWelcomeEmail sends portal credentials to a newly invited client
func (s *Service) SendWelcomeEmail(to, name, tempPassword string) error {
	subject := "Your Client Portal Account"

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Welcome</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4a90e2;">Welcome, %s!</h2>
        <p>Your consultant has set up a client portal account for you. You can use it to review proposals, track goals and actions, and exchange messages.</p>
        <div style="background-color: #e3f2fd; border-left: 4px solid #2196f3; padding: 15px; margin: 20px 0;">
            <p style="margin: 5px 0;"><strong>Email:</strong> %s</p>
            <p style="margin: 5px 0;"><strong>Temporary password:</strong> %s</p>
        </div>
        <p>Please sign in and change your password after your first login.</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4a90e2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Open Portal</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, name, to, tempPassword, s.config.PortalURL)

	return s.sendEmail(to, subject, body)
}

// SendProposalEmail notifies a client that a proposal is ready for review
func (s *Service) SendProposalEmail(to, clientName, engagementTitle string) error {
	subject := fmt.Sprintf("Proposal Ready: %s", engagementTitle)

	proposalURL := fmt.Sprintf("%s/proposals", s.config.PortalURL)

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Proposal Ready</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4a90e2;">Your Proposal Is Ready</h2>
        <p>Hello %s,</p>
        <p>A proposal for <strong>%s</strong> is ready for your review in the client portal.</p>
        <p>You can accept the proposal directly, or decline it with a short note on what you would like to see changed.</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4a90e2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Review Proposal</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, clientName, engagementTitle, proposalURL)

	return s.sendEmail(to, subject, body)
}

// SendProposalResponseEmail notifies the consultant of a client's decision
func (s *Service) SendProposalResponseEmail(to, clientName, engagementTitle string, accepted bool, reason string) error {
	var subject, headline, detail string
	if accepted {
		subject = fmt.Sprintf("Proposal Accepted: %s", engagementTitle)
		headline = "Proposal Accepted"
		detail = fmt.Sprintf("<p><strong>%s</strong> accepted your proposal for <strong>%s</strong>. The engagement is now active.</p>", clientName, engagementTitle)
	} else {
		subject = fmt.Sprintf("Proposal Declined: %s", engagementTitle)
		headline = "Proposal Declined"
		detail = fmt.Sprintf(`<p><strong>%s</strong> declined your proposal for <strong>%s</strong>.</p>
        <div style="background-color: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0;">
            <p style="margin: 5px 0;"><strong>Reason:</strong> %s</p>
        </div>
        <p>You can revise the proposal and send a new version from the engagement page.</p>`, clientName, engagementTitle, reason)
	}

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>%s</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4a90e2;">%s</h2>
        %s
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, headline, headline, detail)

	return s.sendEmail(to, subject, body)
}

// SendSessionReminderEmail reminds a participant about an upcoming session
func (s *Service) SendSessionReminderEmail(to, name, sessionTitle string, scheduledAt time.Time, durationMinutes int) error {
	subject := fmt.Sprintf("Reminder: %s", sessionTitle)

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Session Reminder</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4a90e2;">Upcoming Session</h2>
        <p>Hello %s,</p>
        <p>This is a reminder about your upcoming consulting session:</p>
        <div style="background-color: #e3f2fd; border-left: 4px solid #2196f3; padding: 15px; margin: 20px 0;">
            <p style="margin: 5px 0;"><strong>Session:</strong> %s</p>
            <p style="margin: 5px 0;"><strong>When:</strong> %s</p>
            <p style="margin: 5px 0;"><strong>Duration:</strong> %d minutes</p>
        </div>
        <p>If you need to reschedule, please reach out as early as possible.</p>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, name, sessionTitle, scheduledAt.Format("Monday, January 2 2006 at 15:04 MST"), durationMinutes)

	return s.sendEmail(to, subject, body)
}

// SendUnreadDigestEmail tells a user how many messages are waiting for them
func (s *Service) SendUnreadDigestEmail(to, name string, unreadCount int) error {
	if unreadCount == 0 {
		return nil
	}

	subject := fmt.Sprintf("You have %d unread messages", unreadCount)

	messagesURL := fmt.Sprintf("%s/messages", s.config.PortalURL)

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Unread Messages</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4a90e2;">Messages Waiting For You</h2>
        <p>Hello %s,</p>
        <p>You have <strong>%d unread messages</strong> in your engagement conversations.</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="%s" style="background-color: #4a90e2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Read Messages</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">You receive this digest weekly while you have unread messages.</p>
    </div>
</body>
</html>
`, name, unreadCount, messagesURL)

	return s.sendEmail(to, subject, body)
}

// sendEmail sends an email using SMTP
func (s *Service) sendEmail(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.config.SMTPFrom
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message bytes.Buffer
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := net.JoinHostPort(s.config.SMTPHost, s.config.SMTPPort)
	slog.Debug("Attempting to connect to SMTP server",
		"address", addr,
		"host", s.config.SMTPHost,
		"port", s.config.SMTPPort,
	)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		slog.Error("Failed to connect to SMTP server",
			"address", addr,
			"error", err,
		)
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func(conn net.Conn) {
		err := conn.Close()
		if err != nil {
			slog.Error("Failed to close SMTP connection", "error", err)
		}
	}(conn)

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		slog.Error("Failed to create SMTP client", "error", err)
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func(client *smtp.Client) {
		err := client.Close()
		if err != nil {
			slog.Error("Failed to close SMTP client", "error", err)
		}
	}(client)

	// Authenticate only if credentials are provided and not empty
	// For development (e.g., Mailpit), no authentication is needed
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		// Try to authenticate, but don't fail if it's not supported
		_ = client.Auth(auth)
	}

	if err := client.Mail(s.config.SMTPFrom); err != nil {
		slog.Error("Failed to set sender",
			"from", s.config.SMTPFrom,
			"error", err,
		)
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		slog.Error("Failed to set recipient",
			"to", to,
			"error", err,
		)
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		slog.Error("Failed to initiate data transfer", "error", err)
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	defer func(wc io.WriteCloser) {
		err := wc.Close()
		if err != nil {
			slog.Error("Failed to close write closer", "error", err)
		}
	}(wc)

	if _, err := wc.Write(message.Bytes()); err != nil {
		slog.Error("Failed to write message", "error", err)
		return fmt.Errorf("failed to write message: %w", err)
	}

	slog.Info("Email sent successfully", "to", to)

	return nil
}
