// Package service holds outbound collaborators: SMTP delivery and the
// shared-note render cache.
package service

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends plain-text mail over SMTP. When no host is configured the
// mailer is disabled and Send fails, which the queue consumer logs and
// moves past; mail delivery is best-effort end to end.
type Mailer struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func NewMailer(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{Host: host, Port: port, User: user, Pass: pass, From: from}
}

// Send delivers a single message to recipient.
func (m *Mailer) Send(recipient, subject, body string) error {
	if m.Host == "" {
		return fmt.Errorf("smtp not configured")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.Host, m.Port, m.User, m.Pass)
	return d.DialAndSend(msg)
}
