package security

import "sync"

// RevocationSet records token identifiers (jti) that must no longer be accepted,
// regardless of signature or expiry. Entries are kept for the process lifetime;
// an entry outliving its token's expiry is harmless.
type RevocationSet interface {
	// Revoke marks jti as revoked. Revoking an already-revoked jti is a no-op.
	Revoke(jti string)
	// IsRevoked reports whether jti has been revoked.
	IsRevoked(jti string) bool
}

// MemoryRevocationSet is an in-process RevocationSet. State is intentionally
// lost on restart: revoked tokens are short-lived secrets.
type MemoryRevocationSet struct {
	mu sync.RWMutex
	m  map[string]struct{}
}

// NewMemoryRevocationSet returns an empty in-memory revocation set.
func NewMemoryRevocationSet() *MemoryRevocationSet {
	return &MemoryRevocationSet{m: make(map[string]struct{})}
}

// Revoke marks jti as revoked.
func (s *MemoryRevocationSet) Revoke(jti string) {
	if jti == "" {
		return
	}
	s.mu.Lock()
	s.m[jti] = struct{}{}
	s.mu.Unlock()
}

// IsRevoked reports whether jti has been revoked.
func (s *MemoryRevocationSet) IsRevoked(jti string) bool {
	s.mu.RLock()
	_, ok := s.m[jti]
	s.mu.RUnlock()
	return ok
}
