package sms

import "context"

// Provider sends transactional SMS. Used for out-of-band volunteer
// assignment alerts; delivery is best effort.
type Provider interface {
	SendSMS(ctx context.Context, phone, message string) error
}
