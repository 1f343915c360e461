package handler

import (
	"context"

	"github.com/mailrelay/mailrelay/internal/logger"
	"github.com/mailrelay/mailrelay/internal/model"
)

// Version is reported by the health and index endpoints
const Version = "0.1.0"

// EmailService is what the handlers need from the send operation
type EmailService interface {
	SendTemplateEmail(ctx context.Context, req model.SendEmailRequest) error
	Ready() error
}

// Handler holds all HTTP handlers
type Handler struct {
	log      *logger.Logger
	emailSvc EmailService
}

// New creates a new Handler instance
func New(log *logger.Logger, emailSvc EmailService) *Handler {
	return &Handler{
		log:      log,
		emailSvc: emailSvc,
	}
}
