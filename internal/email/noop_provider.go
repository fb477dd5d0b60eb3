package email

import "taskflow_backend/internal/logger"

type noopProvider struct{}

// NewNoopProvider returns a provider that logs instead of sending.
// Used when SMTP is not configured so the rest of the pipeline keeps
// working in development.
func NewNoopProvider() Provider {
	return noopProvider{}
}

func (noopProvider) Send(msg *Message) error {
	logger.Debug("email sending disabled, message dropped", "to", msg.To, "subject", msg.Subject)
	return nil
}
