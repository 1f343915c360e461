package handler

import (
	"net/http"

	"github.com/mailrelay/mailrelay/internal/logger"
	"github.com/mailrelay/mailrelay/internal/model"
)

// SendEmail handles POST /api/email/send
// Binds the request and forwards it to the provider. The body is not validated.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req model.SendEmailRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := h.emailSvc.SendTemplateEmail(r.Context(), req); err != nil {
		logger.FromContext(r.Context(), h.log).Error().
			Err(err).
			Str("to", req.To).
			Str("template_id", req.TemplateID).
			Msg("send email failed")
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Failed to send email")
		return
	}

	writeJSON(w, http.StatusOK, model.SendEmailResponse{Message: model.EmailSentMessage})
}
