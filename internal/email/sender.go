package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para el envío de correos de verificación.
type Sender interface {
	SendVerificationEmail(ctx context.Context, toEmail string, token string) error
}

type disabledSender struct {
	reason string
}

// NewDisabledSender reemplaza al sender real cuando SMTP no está configurado.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationEmail(_ context.Context, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
