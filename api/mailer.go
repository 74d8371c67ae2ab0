/*
mailer.go - Outbound email for password resets and feedback notices

PURPOSE:
  Wraps the Resend API behind a small interface so handlers can send
  mail without caring whether delivery is real. When email is disabled
  in configuration the server swaps in a logger-backed mailer that
  prints what would have been sent, which keeps local development
  working without an API key.
*/
package api

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Mailer sends the transactional emails the API needs. Implementations
// must be safe for concurrent use.
type Mailer interface {
	// SendPasswordReset delivers a reset link to the address.
	SendPasswordReset(ctx context.Context, to, username, resetURL string) error

	// SendFeedbackNotice tells the operators new feedback arrived.
	SendFeedbackNotice(ctx context.Context, name, email, ftype, message string) error
}

// =============================================================================
// RESEND MAILER
// =============================================================================

// ResendMailer delivers through the Resend API.
type ResendMailer struct {
	client *resend.Client

	// From is the sender, e.g. "CE Tracker <noreply@cetracker.app>".
	From string

	// NoticeTo receives feedback notifications. Empty disables them.
	NoticeTo string
}

func NewResendMailer(apiKey, from, noticeTo string) *ResendMailer {
	return &ResendMailer{
		client:   resend.NewClient(apiKey),
		From:     from,
		NoticeTo: noticeTo,
	}
}

func (m *ResendMailer) SendPasswordReset(ctx context.Context, to, username, resetURL string) error {
	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>We received a request to reset your CE Tracker password. Click the link
below to choose a new one. The link expires in one hour.</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not request this, you can ignore this email.</p>`, username, resetURL)

	params := &resend.SendEmailRequest{
		From:    m.From,
		To:      []string{to},
		Subject: "Reset your CE Tracker password",
		Html:    html,
	}
	_, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("sending reset email: %w", err)
	}
	return nil
}

func (m *ResendMailer) SendFeedbackNotice(ctx context.Context, name, email, ftype, message string) error {
	if m.NoticeTo == "" {
		return nil
	}
	html := fmt.Sprintf(`<p>New feedback from <strong>%s</strong> (%s)</p>
<p>Type: %s</p>
<blockquote>%s</blockquote>`, name, email, ftype, message)

	params := &resend.SendEmailRequest{
		From:    m.From,
		To:      []string{m.NoticeTo},
		Subject: fmt.Sprintf("CE Tracker feedback: %s", ftype),
		Html:    html,
		ReplyTo: email,
	}
	_, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("sending feedback notice: %w", err)
	}
	return nil
}

// =============================================================================
// LOG MAILER
// =============================================================================

// LogMailer records sends to the log instead of delivering. Used when
// email is disabled.
type LogMailer struct {
	Log zerolog.Logger
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, username, resetURL string) error {
	m.Log.Info().
		Str("to", to).
		Str("username", username).
		Str("reset_url", resetURL).
		Msg("email disabled, password reset not sent")
	return nil
}

func (m *LogMailer) SendFeedbackNotice(ctx context.Context, name, email, ftype, message string) error {
	m.Log.Info().
		Str("from", fmt.Sprintf("%s <%s>", name, email)).
		Str("type", ftype).
		Msg("email disabled, feedback notice not sent")
	return nil
}
