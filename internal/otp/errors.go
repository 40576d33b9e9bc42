package otp

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for challenge verification; handlers map them to HTTP codes.
var (
	// ErrNotFound is returned when no live challenge exists for the phone.
	ErrNotFound = errors.New("code not found or already used")
	// ErrExpired is returned when the challenge is past expiry. The record is
	// removed as a side effect.
	ErrExpired = errors.New("code expired")
	// ErrTooManyAttempts is returned when the attempt limit is reached. The
	// record is removed as a side effect.
	ErrTooManyAttempts = errors.New("too many incorrect attempts")
)

// RateLimitedError reports a resend attempt inside the minimum interval.
type RateLimitedError struct {
	// SecondsRemaining until a new code may be requested. Always >= 1.
	SecondsRemaining int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("code already sent, retry in %ds", e.SecondsRemaining)
}

// MismatchError reports a wrong code while attempts remain. The challenge
// stays live.
type MismatchError struct {
	AttemptsRemaining int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("wrong code, %d attempts remaining", e.AttemptsRemaining)
}

// RetryAfter returns the seconds-remaining of a RateLimitedError, or 0.
func RetryAfter(err error) int {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return rl.SecondsRemaining
	}
	return 0
}

// durationToSeconds rounds d up to whole seconds, never below 1.
func durationToSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
