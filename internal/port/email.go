package port

import "context"

// EmailMessage is a plain outbound email.
type EmailMessage struct {
	To       string
	Subject  string
	Body     string
	FromName string
}

// InvitationEmail carries what a team invitation needs to render.
type InvitationEmail struct {
	ToEmail     string
	ToName      string
	CompanyName string
	InvitedBy   string
	Role        string
	Token       string
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
	SendInvitationEmail(ctx context.Context, invite InvitationEmail) error
}
