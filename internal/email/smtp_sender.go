package email

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/gomail.v2"
)

// SMTPSender envía el correo de verificación vía SMTP usando gomail.
type SMTPSender struct {
	dialer     *gomail.Dialer
	from       string
	fromName   string
	appBaseURL string
}

func NewSMTPSender(host string, port int, username, password, from, fromName, appBaseURL string) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		dialer:     gomail.NewDialer(host, port, username, password),
		from:       from,
		fromName:   fromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}, nil
}

func (s *SMTPSender) SendVerificationEmail(_ context.Context, toEmail string, token string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	link := VerificationLink(s.appBaseURL, token)

	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Verify your email address")
	m.SetBody("text/plain", fmt.Sprintf(
		"Welcome to Movie Tracker!\n\n"+
			"Please verify your email address by visiting: %s\n\n"+
			"If you didn't create an account, you can ignore this email.\n\n"+
			"This link will expire in 24 hours.\n",
		link,
	))
	m.AddAlternative("text/html", fmt.Sprintf(
		"<h2>Welcome to Movie Tracker!</h2>"+
			"<p>Please verify your email address by clicking the link below:</p>"+
			`<p><a href="%s">Verify Email</a></p>`+
			"<p>If you didn't create an account, you can ignore this email.</p>"+
			"<p>This link will expire in 24 hours.</p>",
		link,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// VerificationLink construye la URL que consume el endpoint de verificación.
func VerificationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/api/auth/verify?token=%s", strings.TrimRight(baseURL, "/"), url.QueryEscape(token))
}
