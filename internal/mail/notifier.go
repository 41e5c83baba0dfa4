// Package mail notifies clients that a new report is available.
package mail

import (
	"context" // Cancellation before dialing
	"fmt"     // Error wrapping

	"report_portal/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gopkg.in/gomail.v2"         // SMTP client
)

// Sender delivers prepared messages; *gomail.Dialer implements it
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Notifier sends report notifications over SMTP
type Notifier struct {
	sender  Sender // SMTP transport
	from    string // Sender address
	siteURL string // Link included in the message
}

// NewNotifier wraps an existing sender
func NewNotifier(sender Sender, from, siteURL string) *Notifier {
	return &Notifier{sender: sender, from: from, siteURL: siteURL}
}

// NewSMTPNotifier dials host:port with STARTTLS and plain auth
func NewSMTPNotifier(host string, port int, user, pass, from, siteURL string) *Notifier {
	return NewNotifier(gomail.NewDialer(host, port, user, pass), from, siteURL)
}

// ReportUploaded tells a client that report is ready. Every failure is
// returned as ErrMail.
func (n *Notifier) ReportUploaded(ctx context.Context, client *domain.User, report *domain.Report) error {
	if client == nil || client.Email == "" {
		return fmt.Errorf("%w: client has no email address", domain.ErrMail)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMail, err)
	}
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetAddressHeader("To", client.Email, client.Name)
	m.SetHeader("Subject", "New test report: "+report.Name)
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nA new test report \"%s\" was uploaded on %s.\nSign in at %s to download it.\n",
		displayName(client), report.Name, report.Date.Format("2006-01-02"), n.siteURL))
	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: send to %s: %w", domain.ErrMail, client.Email, err)
	}
	logrus.WithFields(logrus.Fields{
		"client_id": client.ID, // Recipient
		"report_id": report.ID, // Report announced
	}).Info("Report notification sent")
	return nil
}

func displayName(u *domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// Disabled is used when no SMTP credentials are configured
type Disabled struct{}

// ReportUploaded always fails with ErrMail so callers log the skipped mail
func (Disabled) ReportUploaded(context.Context, *domain.User, *domain.Report) error {
	return fmt.Errorf("%w: mail is not configured", domain.ErrMail)
}
