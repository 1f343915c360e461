package email

import (
	"context"
	"errors"
	"fmt"
)

// Sender is the interface that all email providers must implement.
// Implementations submit a provider-side template and do not render anything locally.
type Sender interface {
	// Send submits msg to the provider exactly once.
	Send(ctx context.Context, msg TemplateMessage) (*Receipt, error)
}

// Address is a mailbox with an optional display name.
type Address struct {
	Email string
	Name  string
}

// TemplateMessage represents a templated email to be sent.
type TemplateMessage struct {
	From         Address
	To           Address
	TemplateID   string            // provider-side template reference
	TemplateData map[string]string // substitutions applied by the provider
}

// Receipt is what the provider told us about an accepted message.
type Receipt struct {
	StatusCode int
	MessageID  string
}

// Provider errors
var (
	ErrUnknownProvider = errors.New("unknown email provider")
	ErrMissingAPIKey   = errors.New("email provider API key is not configured")
)

// ProviderError is returned when the provider answered with a non-2xx status.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: provider rejected message with status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: provider rejected message with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// IsProviderError checks whether err wraps a ProviderError and returns it.
func IsProviderError(err error) (*ProviderError, bool) {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
