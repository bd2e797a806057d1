package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

// Kind selects a transactional email template.
type Kind string

const (
	KindVerification  Kind = "verification"
	KindPasswordReset Kind = "password_reset"
	KindEmailChange   Kind = "email_change"
	KindTicketCreated Kind = "ticket_created"
	KindTicketReply   Kind = "ticket_reply"
)

// TemplateData carries the fields the templates interpolate. Unused fields
// are ignored by kinds that do not need them.
type TemplateData struct {
	UserName   string
	Link       string
	TTLMinutes int

	TicketID string
	Title    string
	Category string
	Priority string
	Status   string
	Reply    string
}

var templates = map[Kind]*template.Template{
	KindVerification: template.Must(template.New("verification").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:auto">
  <h2>Verify Your Account</h2>
  <p>Hello {{.UserName}},</p>
  <p>Thank you for joining TunePulse! Please verify your account by clicking the button below:</p>
  <p><a href="{{.Link}}" style="background:#1da1f2;color:#fff;padding:10px 20px;border-radius:5px;text-decoration:none">Verify Account</a></p>
  <p>If you didn't create this account, please ignore this email.</p>
  <p>This verification link will expire in {{.TTLMinutes}} minutes.</p>
</div>`)),

	KindPasswordReset: template.Must(template.New("password_reset").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:auto">
  <p>Hello {{.UserName}},</p>
  <p>We received a request to reset your password. If you didn't make this request, please ignore this email.</p>
  <p>If you did request a password reset, please click the link below to create a new password:</p>
  <p><a href="{{.Link}}" style="color:#1d72b8;font-weight:bold">Reset Password</a></p>
  <p>This link will expire in {{.TTLMinutes}} minutes.</p>
  <p>Best regards,<br/>The TunePulse Support Team</p>
</div>`)),

	KindEmailChange: template.Must(template.New("email_change").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:auto">
  <p>Hello {{.UserName}},</p>
  <p>Please confirm your new email address by clicking on the following link:</p>
  <p><a href="{{.Link}}">{{.Link}}</a></p>
  <p>This link will expire in {{.TTLMinutes}} minutes. Your current address stays active until you confirm.</p>
</div>`)),

	KindTicketCreated: template.Must(template.New("ticket_created").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:auto">
  <h1>Ticket Created Successfully!</h1>
  <p>Thank you for reaching out to us. Your support ticket has been created successfully.</p>
  <h3>Ticket Information</h3>
  <ul>
    <li><strong>Ticket ID:</strong> {{.TicketID}}</li>
    <li><strong>Title:</strong> {{.Title}}</li>
    <li><strong>Category:</strong> {{.Category}}</li>
    <li><strong>Priority:</strong> {{.Priority}}</li>
    <li><strong>Status:</strong> {{.Status}}</li>
  </ul>
  <p>We will get back to you shortly to resolve your issue.</p>
</div>`)),

	KindTicketReply: template.Must(template.New("ticket_reply").Parse(`
<div style="font-family:Arial,sans-serif;max-width:600px;margin:auto">
  <p>Dear User,</p>
  <p>We have reviewed your ticket (ID: {{.TicketID}}) and provided the following response:</p>
  <blockquote>{{.Reply}}</blockquote>
  <p>If you have further concerns or questions, please feel free to reach out.</p>
  <p>Best regards,<br/>The TunePulse Support Team</p>
</div>`)),
}

var subjects = map[Kind]func(TemplateData) string{
	KindVerification:  func(TemplateData) string { return "Verify Your Account - TunePulse" },
	KindPasswordReset: func(TemplateData) string { return "Password Reset Request" },
	KindEmailChange:   func(TemplateData) string { return "Confirm Your Email Address" },
	KindTicketCreated: func(d TemplateData) string { return "Ticket Created - " + d.TicketID },
	KindTicketReply:   func(d TemplateData) string { return "Response to Your Ticket - " + d.TicketID },
}

// Render produces the subject and HTML body for the given kind.
func Render(kind Kind, data TemplateData) (subject, body string, err error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown mail kind %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subjects[kind](data), buf.String(), nil
}
