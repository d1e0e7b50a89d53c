package email

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"articlehub/config"
)

var ErrNotConfigured = errors.New("email: smtp is not configured")

type EmailService struct {
	host      string
	port      string
	user      string
	password  string
	from      string
	contactTo string
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg config.SMTP) *EmailService {
	return &EmailService{
		host:      cfg.Host,
		port:      cfg.Port,
		user:      cfg.User,
		password:  cfg.Password,
		from:      cfg.From,
		contactTo: cfg.ContactTo,
		send:      smtp.SendMail,
	}
}

// SendContactMessage forwards a contact-form submission to the site's
// contact address. The visitor's address goes in Reply-To.
func (e *EmailService) SendContactMessage(name, replyTo, message string) error {
	if e.host == "" || e.from == "" || e.contactTo == "" {
		return ErrNotConfigured
	}

	name = sanitizeHeader(name)
	replyTo = sanitizeHeader(replyTo)
	subject := "Contact form: " + name
	body := fmt.Sprintf(`
New message from the ArticleHub contact form.

Name:  %s
Email: %s

%s
`, name, replyTo, message)

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Reply-To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", e.from, e.contactTo, replyTo, subject, body)

	var auth smtp.Auth
	if e.user != "" {
		auth = smtp.PlainAuth("", e.user, e.password, e.host)
	}
	addr := fmt.Sprintf("%s:%s", e.host, e.port)

	if err := e.send(addr, auth, e.from, []string{e.contactTo}, []byte(msg)); err != nil {
		return fmt.Errorf("sending contact email: %w", err)
	}
	return nil
}

// sanitizeHeader drops CR/LF so form input cannot inject headers.
func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}
