package model

// SendEmailRequest is the body of POST /api/email/send
type SendEmailRequest struct {
	To           string            `json:"to"`
	TemplateID   string            `json:"templateId"`
	TemplateData map[string]string `json:"templateData"`
}

// SendEmailResponse is the acknowledgment returned once the provider accepted the message
type SendEmailResponse struct {
	Message string `json:"message"`
}

// EmailSentMessage is the fixed acknowledgment text
const EmailSentMessage = "Email sent successfully"
