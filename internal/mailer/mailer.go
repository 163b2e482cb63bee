// Copyright (c) 2026 Shiloh Intercession Mountain
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mailer sends notification email over SMTP.
package mailer

import (
	"fmt"
	"html"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/config"
	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
)

// Sender delivers notification messages. Handlers depend on this
// interface so tests can substitute a recording fake.
type Sender interface {
	SendContactNotification(submission model.ContactSubmission) error
	SendAdminRequestNotification(user model.User) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer       *gomail.Dialer
	from         string
	contactInbox string
}

// New creates an SMTPMailer from the application config. Returns
// nil when SMTP is not configured; callers treat a nil Sender as
// notifications disabled.
func New(cfg config.Config) *SMTPMailer {
	if !cfg.MailEnabled() {
		return nil
	}
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &SMTPMailer{
		dialer:       gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:         from,
		contactInbox: cfg.ContactInbox,
	}
}

// SendContactNotification forwards a contact form submission to the
// configured inbox.
func (m *SMTPMailer) SendContactNotification(submission model.ContactSubmission) error {
	topic := "General inquiry"
	if submission.Subject.Valid && submission.Subject.String != "" {
		topic = submission.Subject.String
	}
	subject := fmt.Sprintf("Contact form: %s", topic)

	var b strings.Builder
	b.WriteString("<p>A new message arrived through the contact form.</p>")
	fmt.Fprintf(&b, "<p><strong>From:</strong> %s &lt;%s&gt;</p>",
		html.EscapeString(submission.Name), html.EscapeString(submission.Email))
	if submission.Phone.Valid && submission.Phone.String != "" {
		fmt.Fprintf(&b, "<p><strong>Phone:</strong> %s</p>", html.EscapeString(submission.Phone.String))
	}
	fmt.Fprintf(&b, "<p><strong>Subject:</strong> %s</p>", html.EscapeString(topic))
	fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(submission.Message), "\n", "<br>"))
	fmt.Fprintf(&b, "<p><em>Received %s</em></p>", submission.CreatedAt.Format(time.RFC1123))

	return m.send(m.contactInbox, subject, b.String(), submission.Email)
}

// SendAdminRequestNotification tells the inbox that a new account is
// waiting for review.
func (m *SMTPMailer) SendAdminRequestNotification(user model.User) error {
	subject := "New account awaiting review"

	var b strings.Builder
	fmt.Fprintf(&b, "<p>%s %s (%s) signed up and is waiting for approval.</p>",
		html.EscapeString(user.FirstName), html.EscapeString(user.LastName),
		html.EscapeString(user.Email))
	b.WriteString("<p>Review the request in the admin dashboard.</p>")

	return m.send(m.contactInbox, subject, b.String(), "")
}

func (m *SMTPMailer) send(to, subject, htmlBody, replyTo string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	if replyTo != "" {
		msg.SetHeader("Reply-To", replyTo)
	}
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
