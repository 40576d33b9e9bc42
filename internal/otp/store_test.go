package otp

import (
	"errors"
	"sync"
	"testing"
	"time"
)

const testPhone = "13800000000"

func newTestStore() (*Store, *time.Time) {
	s := NewStore(5*time.Minute, 60*time.Second, 5)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.nowF = func() time.Time { return now }
	return s, &now
}

func TestGenerateCode_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q length = %d, want 6", code, len(code))
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains non-digit", code)
			}
		}
	}
}

func TestStore_GenerateRateLimit(t *testing.T) {
	s, now := newTestStore()
	if _, err := s.Generate(testPhone); err != nil {
		t.Fatalf("first Generate: %v", err)
	}

	_, err := s.Generate(testPhone)
	var rl *RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("second Generate: want RateLimitedError, got %v", err)
	}
	if rl.SecondsRemaining <= 0 || rl.SecondsRemaining > 60 {
		t.Errorf("SecondsRemaining = %d, want in (0, 60]", rl.SecondsRemaining)
	}

	// At the interval boundary a new code is issued, and the window resets.
	*now = now.Add(60 * time.Second)
	if _, err := s.Generate(testPhone); err != nil {
		t.Fatalf("Generate after interval: %v", err)
	}
	if _, err := s.Generate(testPhone); RetryAfter(err) == 0 {
		t.Errorf("window did not reset after reissue: %v", err)
	}
}

// The default clock must advance between calls; a frozen clock would
// rate-limit every reissue forever and make expiry unreachable.
func TestStore_DefaultClockAdvances(t *testing.T) {
	s := NewStore(5*time.Minute, 20*time.Millisecond, 5)

	if _, err := s.Generate(testPhone); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if _, err := s.Generate(testPhone); RetryAfter(err) == 0 {
		t.Fatalf("immediate reissue should be rate-limited, got %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if _, err := s.Generate(testPhone); err != nil {
		t.Errorf("Generate after the resend window elapsed: %v", err)
	}
}

func TestStore_DefaultClockExpiry(t *testing.T) {
	s := NewStore(20*time.Millisecond, 0, 5)
	code, err := s.Generate(testPhone)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := s.Verify(testPhone, code); err != ErrExpired {
		t.Errorf("Verify past expiry on the default clock: want ErrExpired, got %v", err)
	}
}

func TestStore_VerifyConsumesChallenge(t *testing.T) {
	s, _ := newTestStore()
	code, err := s.Generate(testPhone)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := s.Verify(testPhone, code); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := s.Verify(testPhone, code); err != ErrNotFound {
		t.Errorf("repeat Verify: want ErrNotFound, got %v", err)
	}
}

func TestStore_VerifyUnknownPhone(t *testing.T) {
	s, _ := newTestStore()
	if err := s.Verify("13911111111", "123456"); err != ErrNotFound {
		t.Errorf("Verify without challenge: want ErrNotFound, got %v", err)
	}
}

func TestStore_VerifyExpired(t *testing.T) {
	s, now := newTestStore()
	code, err := s.Generate(testPhone)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	*now = now.Add(5*time.Minute + time.Second)
	if err := s.Verify(testPhone, code); err != ErrExpired {
		t.Fatalf("Verify past expiry: want ErrExpired, got %v", err)
	}
	// Expiry detection removes the record.
	if err := s.Verify(testPhone, code); err != ErrNotFound {
		t.Errorf("Verify after expiry removal: want ErrNotFound, got %v", err)
	}
}

func TestStore_AttemptExhaustion(t *testing.T) {
	s, _ := newTestStore()
	code, err := s.Generate(testPhone)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i := 1; i <= 4; i++ {
		err := s.Verify(testPhone, wrong)
		var mm *MismatchError
		if !errors.As(err, &mm) {
			t.Fatalf("attempt %d: want MismatchError, got %v", i, err)
		}
		if mm.AttemptsRemaining != 5-i {
			t.Errorf("attempt %d: AttemptsRemaining = %d, want %d", i, mm.AttemptsRemaining, 5-i)
		}
	}

	// Fifth wrong attempt exhausts and removes the record.
	if err := s.Verify(testPhone, wrong); err != ErrTooManyAttempts {
		t.Fatalf("attempt 5: want ErrTooManyAttempts, got %v", err)
	}
	// Even the correct code now fails with NotFound.
	if err := s.Verify(testPhone, code); err != ErrNotFound {
		t.Errorf("attempt 6 with correct code: want ErrNotFound, got %v", err)
	}
}

func TestStore_CorrectCodeOnLastAttempt(t *testing.T) {
	s, _ := newTestStore()
	code, err := s.Generate(testPhone)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < 4; i++ {
		_ = s.Verify(testPhone, wrong)
	}
	if err := s.Verify(testPhone, code); err != nil {
		t.Errorf("correct code on final attempt: %v", err)
	}
}

func TestStore_ConcurrentGenerate(t *testing.T) {
	s, _ := newTestStore()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Generate(testPhone)
		}(i)
	}
	wg.Wait()

	ok, limited := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case RetryAfter(err) > 0:
			limited++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || limited != n-1 {
		t.Errorf("got %d successes and %d rate-limited, want 1 and %d", ok, limited, n-1)
	}
}
