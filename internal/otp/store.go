// Package otp implements one-time numeric login codes keyed by phone number:
// issuance with a resend window, and verification with expiry and an attempt
// limit. State lives in process memory and is lost on restart by design.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

var codeSpace = big.NewInt(1000000)

// GenerateCode returns a uniformly random fixed-width 6-digit code
// (leading zeros preserved, e.g. "012345"). Uses crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

type challenge struct {
	code      string
	issuedAt  time.Time
	expiresAt time.Time
	attempts  int
}

// Store holds at most one live challenge per phone number. All operations are
// read-modify-write under one mutex; the lock is never held across I/O.
type Store struct {
	mu          sync.Mutex
	m           map[string]*challenge
	expiry      time.Duration
	resend      time.Duration
	maxAttempts int
	nowF        func() time.Time
}

// NewStore returns a Store with the given expiry window, resend interval, and
// attempt limit.
func NewStore(expiry, resend time.Duration, maxAttempts int) *Store {
	return &Store{
		m:           make(map[string]*challenge),
		expiry:      expiry,
		resend:      resend,
		maxAttempts: maxAttempts,
		nowF:        func() time.Time { return time.Now().UTC() },
	}
}

// Generate issues a new code for phone, overwriting any previous challenge.
// If the live challenge was issued less than the resend interval ago it
// returns a *RateLimitedError instead; the window is measured from the live
// record's issue time, so it resets whenever a code is actually issued.
func (s *Store) Generate(phone string) (string, error) {
	now := s.nowF()
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m[phone]; ok {
		if since := now.Sub(existing.issuedAt); since < s.resend {
			return "", &RateLimitedError{SecondsRemaining: durationToSeconds(s.resend - since)}
		}
	}
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	s.m[phone] = &challenge{
		code:      code,
		issuedAt:  now,
		expiresAt: now.Add(s.expiry),
		attempts:  0,
	}
	return code, nil
}

// Verify checks submitted against the live challenge for phone.
//
// Outcomes: ErrNotFound when no live challenge exists; ErrExpired (record
// removed) past expiry; *MismatchError on a wrong code with attempts left;
// ErrTooManyAttempts (record removed) when the wrong code consumes the last
// attempt; nil (record removed) on an exact match. Comparison is exact-string;
// the narrow search space is protected by the attempt limit.
func (s *Store) Verify(phone, submitted string) error {
	now := s.nowF()
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[phone]
	if !ok {
		return ErrNotFound
	}
	if now.After(c.expiresAt) {
		delete(s.m, phone)
		return ErrExpired
	}
	c.attempts++
	if c.code != submitted {
		remaining := s.maxAttempts - c.attempts
		if remaining <= 0 {
			delete(s.m, phone)
			return ErrTooManyAttempts
		}
		return &MismatchError{AttemptsRemaining: remaining}
	}
	delete(s.m, phone)
	return nil
}
