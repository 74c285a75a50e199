package ses

import (
	"context"
	"fmt"
	"html"
	"net/url"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"khata/internal/port"
	"khata/internal/retry"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
	policy      retry.Policy
}

// NewSESSender creates a new SES-backed EmailSender. Throttled sends are retried with policy.
func NewSESSender(region, fromAddress, fromName, frontendURL string, policy retry.Policy) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
		policy:      policy,
	}, nil
}

func (s *sesSender) SendEmail(ctx context.Context, msg port.EmailMessage) error {
	return s.send(ctx, msg.To, msg.FromName, msg.Subject, "", msg.Body)
}

func (s *sesSender) SendInvitationEmail(ctx context.Context, invite port.InvitationEmail) error {
	acceptURL := InvitationURL(s.frontendURL, invite.Token)

	subject := fmt.Sprintf("You're invited to join %s on Khata", invite.CompanyName)
	htmlBody := buildInvitationHTML(invite, acceptURL)
	textBody := fmt.Sprintf("Hi %s,\n\n%s has invited you to join %s on Khata as %s.\n\nAccept the invitation here:\n%s\n\nThis link expires in 72 hours.\n\nKhata",
		invite.ToName, invite.InvitedBy, invite.CompanyName, invite.Role, acceptURL)

	return s.send(ctx, invite.ToEmail, "", subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, to, fromName, subject, htmlBody, textBody string) error {
	if fromName == "" {
		fromName = s.fromName
	}
	from := fmt.Sprintf("%s <%s>", fromName, s.fromAddress)

	body := &types.Body{Text: &types.Content{Data: &textBody}}
	if htmlBody != "" {
		body.Html = &types.Content{Data: &htmlBody}
	}

	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
			FromEmailAddress: &from,
			Destination: &types.Destination{
				ToAddresses: []string{to},
			},
			Content: &types.EmailContent{
				Simple: &types.Message{
					Subject: &types.Content{Data: &subject},
					Body:    body,
				},
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

// InvitationURL is the frontend link that accepts an invitation token.
func InvitationURL(frontendURL, token string) string {
	return fmt.Sprintf("%s/accept-invite?token=%s", frontendURL, url.QueryEscape(token))
}

func buildInvitationHTML(invite port.InvitationEmail, acceptURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Join %s on Khata</h2>
  <p>Hi %s,</p>
  <p>%s has invited you to help manage the books of <strong>%s</strong> as <strong>%s</strong>.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #0F766E; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Accept Invitation</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <p style="color: #999; font-size: 12px;">This link expires in 72 hours.</p>
</body>
</html>`,
		html.EscapeString(invite.CompanyName),
		html.EscapeString(invite.ToName),
		html.EscapeString(invite.InvitedBy),
		html.EscapeString(invite.CompanyName),
		html.EscapeString(invite.Role),
		acceptURL, html.EscapeString(acceptURL))
}
