// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
	// transport is swapped in tests
	transport func(cfg *Config, recipients []string, msg []byte) error
}

func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
		transport: deliver,
	}
	s.loadTemplates()
	return s
}

// Enabled reports whether an SMTP host is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.config != nil && s.config.Host != ""
}

// Email represents an email message
type Email struct {
	To       []string
	CC       []string
	BCC      []string
	ReplyTo  string
	Subject  string
	Body     string
	HTMLBody string
}

const layout = `
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #10b981; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header"><h2>{{template "title" .}}</h2></div>
    <div class="content">{{template "body" .}}</div>
    <div class="footer">ProjectHub • Project Management Platform</div>
</div>
</body>
</html>
`

func (s *Service) loadTemplates() {
	s.templates["contact_message"] = template.Must(template.Must(template.New("contact_message").Parse(layout)).Parse(`
{{define "title"}}New contact message{{end}}
{{define "body"}}
<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
<p style="white-space: pre-wrap;">{{.Message}}</p>
{{end}}`))

	s.templates["pricing_decision"] = template.Must(template.Must(template.New("pricing_decision").Parse(layout)).Parse(`
{{define "title"}}Your {{.PlanName}} plan request{{end}}
{{define "body"}}
<p>Hello,</p>
{{if .Approved}}
<p>Your request for the <strong>{{.PlanName}}</strong> plan ({{.PlanPrice}}) has been approved.</p>
{{else}}
<p>Your request for the <strong>{{.PlanName}}</strong> plan ({{.PlanPrice}}) has been rejected.</p>
{{end}}
{{if .Notes}}<p><strong>Notes:</strong> {{.Notes}}</p>{{end}}
<p><a href="{{.DashboardURL}}">Open your dashboard</a></p>
{{end}}`))
}

// Send sends an email. It is a no-op when SMTP is not configured.
func (s *Service) Send(email *Email) error {
	if !s.Enabled() {
		logger.L().Debugw("[Email] not configured, skipping send", "subject", email.Subject)
		return nil
	}

	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(email.CC, ", ")))
	}
	if email.ReplyTo != "" {
		msg.WriteString(fmt.Sprintf("Reply-To: %s\r\n", email.ReplyTo))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		msg.WriteString(email.Body)
	}

	recipients := append(append(append([]string{}, email.To...), email.CC...), email.BCC...)
	return s.transport(s.config, recipients, msg.Bytes())
}

func deliver(cfg *Config, recipients []string, msg []byte) error {
	auth := smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	if !cfg.UseTLS {
		return smtp.SendMail(addr, auth, cfg.From, recipients, msg)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return fmt.Errorf("TLS dial error: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("SMTP client error: %w", err)
	}
	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("auth error: %w", err)
	}
	if err = client.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail error: %w", err)
	}
	for _, rcpt := range recipients {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt error: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data error: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close error: %w", err)
	}
	return client.Quit()
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return s.Send(&Email{To: to, Subject: subject, HTMLBody: body.String()})
}

type ContactMessageData struct {
	Name    string
	Email   string
	Message string
}

// SendContactMessage forwards a contact form submission to the support inbox.
func (s *Service) SendContactMessage(supportInbox string, data ContactMessageData) error {
	tmpl := s.templates["contact_message"]
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	return s.Send(&Email{
		To:       []string{supportInbox},
		ReplyTo:  data.Email,
		Subject:  contactSubject(data),
		HTMLBody: body.String(),
	})
}

func contactSubject(data ContactMessageData) string {
	return fmt.Sprintf("[ProjectHub] Contact message from %s", data.Name)
}

type PricingDecisionData struct {
	PlanName     string
	PlanPrice    string
	Approved     bool
	Notes        string
	DashboardURL string
}

func (s *Service) SendPricingDecision(to string, data PricingDecisionData) error {
	return s.SendWithTemplate([]string{to}, pricingDecisionSubject(data), "pricing_decision", data)
}

func pricingDecisionSubject(data PricingDecisionData) string {
	verdict := "rejected"
	if data.Approved {
		verdict = "approved"
	}
	return fmt.Sprintf("[ProjectHub] Your %s plan request was %s", data.PlanName, verdict)
}

// ============================================
// Email Queue
// ============================================

// EmailQueue sends templated emails on background workers.
type EmailQueue struct {
	service *Service
	queue   chan *queuedEmail
	done    chan struct{}
	wg      sync.WaitGroup
}

type queuedEmail struct {
	to           []string
	subject      string
	templateName string
	data         interface{}
	retries      int
}

const maxEmailRetries = 3

func NewEmailQueue(service *Service, workers int) *EmailQueue {
	q := &EmailQueue{
		service: service,
		queue:   make(chan *queuedEmail, 1000),
		done:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

func (q *EmailQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case email := <-q.queue:
			err := q.service.SendWithTemplate(email.to, email.subject, email.templateName, email.data)
			if err == nil {
				continue
			}
			logger.L().Warnw("[Email] send failed", "subject", email.subject, "attempt", email.retries+1, "error", err)
			if email.retries < maxEmailRetries {
				email.retries++
				select {
				case <-time.After(time.Second * time.Duration(email.retries*2)):
				case <-q.done:
					return
				}
				q.offer(email)
			}
		case <-q.done:
			return
		}
	}
}

// Enqueue adds an email to the queue. A full queue drops the email.
func (q *EmailQueue) Enqueue(to []string, subject, templateName string, data interface{}) {
	q.offer(&queuedEmail{to: to, subject: subject, templateName: templateName, data: data})
}

func (q *EmailQueue) offer(email *queuedEmail) {
	select {
	case q.queue <- email:
	default:
		logger.L().Errorw("[Email] queue full, email dropped", "subject", email.subject)
	}
}

// SendPricingDecision queues the decision email. It never fails; delivery
// errors are retried and logged by the workers.
func (q *EmailQueue) SendPricingDecision(to string, data PricingDecisionData) error {
	q.Enqueue([]string{to}, pricingDecisionSubject(data), "pricing_decision", data)
	return nil
}

// SendContactMessage queues a contact form submission for the support inbox.
func (q *EmailQueue) SendContactMessage(supportInbox string, data ContactMessageData) error {
	q.Enqueue([]string{supportInbox}, contactSubject(data), "contact_message", data)
	return nil
}

// Stop stops the workers and waits for them to exit.
func (q *EmailQueue) Stop() {
	close(q.done)
	q.wg.Wait()
}
