package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"go-hiring-pipeline/config"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// InvitationEmailData feeds the invitation template.
type InvitationEmailData struct {
	Name      string
	Role      string
	Link      string
	InvitedBy string
}

func NewEmailService(cfg *config.Config) *EmailService {
	from := cfg.SMTPFromEmail
	if from == "" {
		from = cfg.SMTPUsername
	}
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: from,
		send:      smtp.SendMail,
	}
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>You're invited</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1f4e79; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .button { display: inline-block; padding: 12px 24px; background: #1f4e79; color: white; text-decoration: none; border-radius: 4px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Join the hiring team</h1>
        </div>
        <div class="content">
            <p>Hi {{.Name}},</p>
            <p>{{if .InvitedBy}}{{.InvitedBy}} has invited you{{else}}You have been invited{{end}} to the hiring pipeline as <strong>{{.Role}}</strong>.</p>
            <p><a class="button" href="{{.Link}}">Accept invitation</a></p>
            <p>If the button does not work, open this link: {{.Link}}</p>
        </div>
        <div class="footer">
            <p>If you were not expecting this invitation you can ignore this email.</p>
        </div>
    </div>
</body>
</html>`))

// SendInvitation emails an invitation link to a newly invited user.
func (s *EmailService) SendInvitation(to, name, role, link, invitedBy string) error {
	var body bytes.Buffer
	err := invitationTemplate.Execute(&body, InvitationEmailData{
		Name:      name,
		Role:      role,
		Link:      link,
		InvitedBy: invitedBy,
	})
	if err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		to,
		"You're invited to the hiring pipeline",
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
