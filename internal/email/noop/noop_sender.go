package noop

import (
	"context"

	"khata/internal/email/ses"
	"khata/internal/logger"
	"khata/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates an EmailSender that only logs what it would have sent.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendEmail(ctx context.Context, msg port.EmailMessage) error {
	logger.FromContext(ctx).Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("noop email")
	return nil
}

func (s *noopSender) SendInvitationEmail(ctx context.Context, invite port.InvitationEmail) error {
	logger.FromContext(ctx).Info().
		Str("to", invite.ToEmail).
		Str("company", invite.CompanyName).
		Str("accept_url", ses.InvitationURL(s.frontendURL, invite.Token)).
		Msg("noop invitation email")
	return nil
}
