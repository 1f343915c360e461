package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	// DefaultSendGridHost is the public SendGrid API host.
	DefaultSendGridHost = "https://api.sendgrid.com"

	sendGridProvider     = "sendgrid"
	sendGridMailSendPath = "/v3/mail/send"
)

// SendGridConfig holds the configuration for the SendGrid sender.
type SendGridConfig struct {
	// APIKey is sent as the bearer token.
	APIKey string
	// BaseURL overrides DefaultSendGridHost.
	BaseURL string
}

// SendGridSender implements Sender using the SendGrid v3 Mail Send API.
type SendGridSender struct {
	apiKey string
	host   string
}

// NewSendGridSender creates a new SendGridSender.
func NewSendGridSender(cfg SendGridConfig) (*SendGridSender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid: %w", ErrMissingAPIKey)
	}

	host := cfg.BaseURL
	if host == "" {
		host = DefaultSendGridHost
	}

	return &SendGridSender{
		apiKey: cfg.APIKey,
		host:   host,
	}, nil
}

// Send submits a dynamic-template message via the SendGrid API.
// Any status outside 2xx is reported as a *ProviderError.
func (s *SendGridSender) Send(ctx context.Context, msg TemplateMessage) (*Receipt, error) {
	req := sendgrid.GetRequest(s.apiKey, sendGridMailSendPath, s.host)
	req.Method = rest.Post
	req.Body = mail.GetRequestBody(newSendGridMail(msg))

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("sendgrid: failed to send email: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Provider:   sendGridProvider,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}

	return &Receipt{
		StatusCode: resp.StatusCode,
		MessageID:  http.Header(resp.Headers).Get("X-Message-Id"),
	}, nil
}

// newSendGridMail builds a single-recipient dynamic template message.
func newSendGridMail(msg TemplateMessage) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(msg.From.Name, msg.From.Email))
	m.SetTemplateID(msg.TemplateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.To.Name, msg.To.Email))
	for key, value := range msg.TemplateData {
		p.SetDynamicTemplateData(key, value)
	}
	m.AddPersonalizations(p)

	return m
}
