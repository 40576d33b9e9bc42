// Package sms delivers login codes over the SMS channel. Delivery is an
// external collaborator: handlers depend on Sender and never on a concrete
// provider.
package sms

import (
	"context"

	"github.com/rs/zerolog"
)

// Sender delivers a one-time login code to a phone number.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// LogSender is the development fallback used when no provider is configured.
// It logs that a code was issued without ever logging the code itself.
type LogSender struct {
	Logger zerolog.Logger
}

// SendCode records the delivery attempt and succeeds.
func (s *LogSender) SendCode(ctx context.Context, phone, code string) error {
	s.Logger.Info().Str("phone", maskPhone(phone)).Msg("otp issued (sms delivery disabled)")
	return nil
}

// maskPhone keeps the first three and last four digits (e.g. "138****0000").
func maskPhone(phone string) string {
	if len(phone) < 8 {
		return "****"
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}
