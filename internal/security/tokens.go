package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for token verification; handlers map them to HTTP codes.
var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or carries unusable claims.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a structurally valid token is past exp.
	ErrTokenExpired = errors.New("token expired")
	// ErrKindMismatch is returned when the token kind does not match the
	// operation (e.g. a refresh token presented as a bearer credential).
	ErrKindMismatch = errors.New("token kind mismatch")
	// ErrTokenRevoked is returned when the token's jti is in the revocation set.
	ErrTokenRevoked = errors.New("token has been revoked")
)

// TokenKind discriminates the two session token types.
type TokenKind string

const (
	// TokenKindAccess is the short-lived per-request credential.
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh is the long-lived credential exchanged for a new pair.
	TokenKindRefresh TokenKind = "refresh"
)

// SessionClaims is the signed claim set carried by both token kinds.
type SessionClaims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"type"`
}

// TokenProvider issues, verifies, and revokes HS256-signed session tokens.
// Verification consults the injected RevocationSet; issuance has no side
// effects beyond constructing the token.
type TokenProvider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoked    RevocationSet
}

// NewTokenProvider returns a TokenProvider signing with the given symmetric
// secret. The revocation set is shared with whoever else needs to consult it.
func NewTokenProvider(secret []byte, accessTTL, refreshTTL time.Duration, revoked RevocationSet) *TokenProvider {
	return &TokenProvider{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    revoked,
	}
}

// Issue signs a fresh token of the given kind for subject (user id).
// Each token gets a random jti; nothing is recorded until the token is revoked.
func (p *TokenProvider) Issue(subject string, kind TokenKind) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}
	ttl := p.accessTTL
	if kind == TokenKindRefresh {
		ttl = p.refreshTTL
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// AccessTTL returns the configured access-token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// Verify parses tokenString and validates signature, expiry, kind, and
// revocation, in that order. Returns the claims on success.
func (p *TokenProvider) Verify(tokenString string, expected TokenKind) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, p.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Kind != expected {
		return nil, ErrKindMismatch
	}
	if p.revoked.IsRevoked(claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke inserts the token's jti into the revocation set. Expired tokens are
// accepted; a malformed or wrongly signed token is a no-op, never an error,
// so a logout with a stale token still succeeds.
func (p *TokenProvider) Revoke(tokenString string) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, p.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation())
	if err != nil {
		return
	}
	p.revoked.Revoke(claims.ID)
}

func (p *TokenProvider) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidToken
	}
	return p.secret, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
