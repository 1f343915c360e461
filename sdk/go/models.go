package mailrelay

// SendEmailRequest asks the server to send one provider-side template.
type SendEmailRequest struct {
	To           string            `json:"to"`
	TemplateID   string            `json:"templateId"`
	TemplateData map[string]string `json:"templateData,omitempty"`
}

// SendEmailResponse is the server acknowledgment.
type SendEmailResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}
