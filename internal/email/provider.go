package email

import (
	"fmt"

	"github.com/mailrelay/mailrelay/internal/config"
	"github.com/mailrelay/mailrelay/internal/logger"
)

// Supported provider names for email.provider.
const (
	ProviderSendGrid = "sendgrid"
	ProviderLog      = "log"
)

// New builds the Sender selected by cfg.Provider.
// It is cheap and holds no connections, so callers may build one per message.
func New(cfg config.EmailConfig, log *logger.Logger) (Sender, error) {
	switch cfg.Provider {
	case ProviderSendGrid, "":
		return NewSendGridSender(SendGridConfig{
			APIKey:  cfg.SendGrid.APIKey,
			BaseURL: cfg.SendGrid.BaseURL,
		})
	case ProviderLog:
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// CheckConfig reports whether cfg can produce a working Sender.
func CheckConfig(cfg config.EmailConfig) error {
	switch cfg.Provider {
	case ProviderSendGrid, "":
		if cfg.SendGrid.APIKey == "" {
			return fmt.Errorf("sendgrid: %w", ErrMissingAPIKey)
		}
		return nil
	case ProviderLog:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
