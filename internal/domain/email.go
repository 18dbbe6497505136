package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// EOIDecisionEmailData holds data for the approval and rejection emails.
type EOIDecisionEmailData struct {
	Email       string
	SponsorName string
	EventName   string
	LevelName   string // empty when no level was assigned
	Reason      string // rejection only
}

// InfoRequestEmailData holds data for the request-for-information email.
type InfoRequestEmailData struct {
	Email       string
	SponsorName string
	EventName   string
	Message     string
}

// EmailService defines the contract for sending domain-level emails.
// Sends are fire-and-forget from the engine's perspective: callers log
// failures but never roll back a state transition on them.
type EmailService interface {
	SendEOIApproved(ctx context.Context, data *EOIDecisionEmailData) error
	SendEOIRejected(ctx context.Context, data *EOIDecisionEmailData) error
	SendInfoRequest(ctx context.Context, data *InfoRequestEmailData) error
}
