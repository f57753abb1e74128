package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"kanbanly/config"
)

type EmailData struct {
	Subject  string
	To       []string
	Template string
	Data     interface{}
	Year     int
}

// Embedded email templates
var emailTemplates = map[string]string{
	"team_invite": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .button { display: inline-block; padding: 12px 24px; background: #3498db; color: #fff; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>You've been invited to join {{.Data.TeamName}}</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>{{.Data.InviterName}} invited you to join the team <strong>{{.Data.TeamName}}</strong> as a {{.Data.Role}}.</p>

        <p><a class="button" href="{{.Data.AcceptURL}}">Accept invitation</a></p>

        <p>This invitation expires on {{.Data.ExpiresAt}}.</p>
    </div>

    <div class="footer">
        <p>If you weren't expecting this invitation, you can safely ignore this email.</p>
        <p>© {{.Year}} Kanbanly. All rights reserved.</p>
    </div>
</body>
</html>`,
}

// SendEmail renders the named template and delivers it via the configured
// SMTP server.
func SendEmail(data EmailData) error {
	tmplBody, ok := emailTemplates[data.Template]
	if !ok {
		return fmt.Errorf("unknown email template: %s", data.Template)
	}

	tmpl, err := template.New(data.Template).Parse(tmplBody)
	if err != nil {
		return fmt.Errorf("parsing email template: %w", err)
	}

	data.Year = time.Now().Year()
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("rendering email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.SMTP.From)
	m.SetHeader("To", data.To...)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTP.Host,
		config.AppConfig.SMTP.Port,
		config.AppConfig.SMTP.Username,
		config.AppConfig.SMTP.Password,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
