package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// Email is a message ready to be delivered. HTML is derived from Text when empty.
type Email struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	HTML    string   `json:"html,omitempty"`
}

// Mailer delivers emails through one backend.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// NewMailer returns the mailer selected by EMAIL_BACKEND.
func NewMailer(cfg *config.Config, log zerolog.Logger) Mailer {
	switch cfg.EmailBackend {
	case "sendgrid":
		return NewSendgridMailer(cfg.SendgridAPIKey, cfg.EmailFromName, cfg.EmailFrom, cfg.AppName)
	case "smtp":
		return &SMTPMailer{
			host:     cfg.SMTPHost,
			port:     cfg.SMTPPort,
			user:     cfg.SMTPUser,
			password: cfg.SMTPPassword,
			from:     cfg.EmailFrom,
			fromName: cfg.EmailFromName,
		}
	default:
		return &ConsoleMailer{log: log.With().Str("component", "console_mailer").Logger()}
	}
}

// textToHTML renders plain text as escaped paragraphs.
func textToHTML(text string) string {
	var b strings.Builder
	for _, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}

// ─── SendGrid ──────────────────────────────────────────────────────────

// SendgridMailer sends through the SendGrid v3 API.
type SendgridMailer struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
}

func NewSendgridMailer(key, fromName, fromEmail, appName string) *SendgridMailer {
	return &SendgridMailer{
		key:        key,
		from:       sgmail.NewEmail(fromName, fromEmail),
		subjPrefix: "[" + appName + "] ",
	}
}

func (m *SendgridMailer) prepare(msg Email) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = m.subjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}

	body := msg.HTML
	if body == "" {
		body = textToHTML(msg.Text)
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", body),
	)
	return v3
}

func (m *SendgridMailer) Send(_ context.Context, msg Email) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// ─── SMTP ──────────────────────────────────────────────────────────────

// SMTPMailer sends through a plain SMTP relay with PLAIN auth.
type SMTPMailer struct {
	host     string
	port     int
	user     string
	password string
	from     string
	fromName string
}

func (m *SMTPMailer) Send(_ context.Context, msg Email) error {
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	body := msg.HTML
	if body == "" {
		body = textToHTML(msg.Text)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.fromName, m.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	addr := m.host + ":" + strconv.Itoa(m.port)
	if err := smtp.SendMail(addr, auth, m.from, msg.To, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// ─── Console ───────────────────────────────────────────────────────────

// ConsoleMailer only logs messages. Used in development.
type ConsoleMailer struct {
	log zerolog.Logger
}

func (m *ConsoleMailer) Send(_ context.Context, msg Email) error {
	m.log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("email")
	return nil
}
