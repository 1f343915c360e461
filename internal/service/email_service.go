package service

import (
	"context"
	"fmt"

	"github.com/mailrelay/mailrelay/internal/config"
	"github.com/mailrelay/mailrelay/internal/email"
	"github.com/mailrelay/mailrelay/internal/logger"
	"github.com/mailrelay/mailrelay/internal/model"
)

// SenderFactory builds a provider Sender from an email configuration snapshot.
type SenderFactory func(cfg config.EmailConfig, log *logger.Logger) (email.Sender, error)

// EmailService forwards templated send requests to the configured provider.
type EmailService struct {
	cfg       *config.Store
	newSender SenderFactory
	log       *logger.Logger
}

// NewEmailService creates a new EmailService backed by email.New.
func NewEmailService(cfg *config.Store, log *logger.Logger) *EmailService {
	return NewEmailServiceWithFactory(cfg, email.New, log)
}

// NewEmailServiceWithFactory creates a new EmailService with a custom sender factory.
func NewEmailServiceWithFactory(cfg *config.Store, newSender SenderFactory, log *logger.Logger) *EmailService {
	return &EmailService{
		cfg:       cfg,
		newSender: newSender,
		log:       log.WithComponent("email_service"),
	}
}

// SendTemplateEmail submits one templated message addressed from the configured
// sender identity to req.To. The credential is read from the current
// configuration snapshot and a fresh Sender is built for every call.
func (s *EmailService) SendTemplateEmail(ctx context.Context, req model.SendEmailRequest) error {
	cfg := s.cfg.Current().Email
	log := logger.FromContext(ctx, s.log)

	sender, err := s.newSender(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create email sender: %w", err)
	}

	msg := email.TemplateMessage{
		From: email.Address{
			Email: cfg.From.Address,
			Name:  cfg.From.Name,
		},
		To:           email.Address{Email: req.To},
		TemplateID:   req.TemplateID,
		TemplateData: req.TemplateData,
	}

	receipt, err := sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	var status int
	var messageID string
	if receipt != nil {
		status, messageID = receipt.StatusCode, receipt.MessageID
	}
	log.EmailDispatched(cfg.Provider, req.To, req.TemplateID, status, messageID)

	return nil
}

// Ready reports whether the current configuration can build a Sender.
func (s *EmailService) Ready() error {
	return email.CheckConfig(s.cfg.Current().Email)
}
