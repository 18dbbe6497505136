package services

import (
	"context"
	"fmt"
	"log"

	"sponsorengine/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendEOIApproved sends the approval notification using the "eoi_approved" template.
func (s *emailService) SendEOIApproved(ctx context.Context, data *domain.EOIDecisionEmailData) error {
	if data == nil {
		return fmt.Errorf("eoi decision data is nil")
	}
	return s.send("eoi_approved", data, data.Email)
}

// SendEOIRejected sends the rejection notification using the "eoi_rejected" template.
func (s *emailService) SendEOIRejected(ctx context.Context, data *domain.EOIDecisionEmailData) error {
	if data == nil {
		return fmt.Errorf("eoi decision data is nil")
	}
	return s.send("eoi_rejected", data, data.Email)
}

// SendInfoRequest sends the request-for-information notification using the "eoi_info_request" template.
func (s *emailService) SendInfoRequest(ctx context.Context, data *domain.InfoRequestEmailData) error {
	if data == nil {
		return fmt.Errorf("info request data is nil")
	}
	return s.send("eoi_info_request", data, data.Email)
}

func (s *emailService) send(templateName string, data any, to string) error {
	if to == "" {
		return fmt.Errorf("%s email data is missing a recipient", templateName)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	log.Printf("[EMAIL] %s email sent to %s", templateName, to)
	return nil
}
