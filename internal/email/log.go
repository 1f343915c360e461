package email

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mailrelay/mailrelay/internal/logger"
)

// LogSender implements Sender by writing the message to the log.
// Nothing leaves the process; use it for local development.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.WithComponent("email_log_sender")}
}

// Send logs msg and reports it as accepted.
func (s *LogSender) Send(ctx context.Context, msg TemplateMessage) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s.log.Info().
		Str("message_id", id).
		Str("from", msg.From.Email).
		Str("from_name", msg.From.Name).
		Str("to", msg.To.Email).
		Str("template_id", msg.TemplateID).
		Interface("template_data", msg.TemplateData).
		Msg("email logged instead of sent")

	return &Receipt{
		StatusCode: http.StatusAccepted,
		MessageID:  id,
	}, nil
}
