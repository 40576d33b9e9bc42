// Package service implements the authentication flows: SMS-code login with
// auto-registration, password login, explicit registration, refresh rotation,
// and logout.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/youzhaozhao/ContractClarity/internal/otp"
	"github.com/youzhaozhao/ContractClarity/internal/security"
	"github.com/youzhaozhao/ContractClarity/internal/sms"
	userdomain "github.com/youzhaozhao/ContractClarity/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP codes.
var (
	ErrInvalidPhone  = errors.New("invalid phone number")
	ErrUserNotFound  = errors.New("user not found")
	ErrNoPassword    = errors.New("account has no password set")
	ErrWrongPassword = errors.New("wrong password")
	ErrAlreadyExists = errors.New("phone already registered")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
)

const minPasswordLength = 6

// AuthResult is a freshly issued token pair plus the authenticated user.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *userdomain.PublicUser
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByPhone(ctx context.Context, phone string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// AuthService wires the OTP store, token provider, and user repository into
// the login flows.
type AuthService struct {
	userRepo UserRepo
	codes    *otp.Store
	tokens   *security.TokenProvider
	hasher   *security.Hasher
	sender   sms.Sender
	devMode  bool
	logger   zerolog.Logger
}

// NewAuthService returns an AuthService with the given dependencies.
// With devMode set, SendCode returns the issued code to the caller so clients
// can complete the flow without a real SMS provider.
func NewAuthService(
	userRepo UserRepo,
	codes *otp.Store,
	tokens *security.TokenProvider,
	hasher *security.Hasher,
	sender sms.Sender,
	devMode bool,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codes:    codes,
		tokens:   tokens,
		hasher:   hasher,
		sender:   sender,
		devMode:  devMode,
		logger:   logger,
	}
}

// SendCode issues a login code for phone and hands it to the SMS sender.
// Delivery failures are logged, not surfaced: the code is live either way and
// the client may retry after the resend window. The returned devCode is
// non-empty only in dev mode.
func (s *AuthService) SendCode(ctx context.Context, phone string) (devCode string, err error) {
	if !userdomain.ValidPhone(phone) {
		return "", ErrInvalidPhone
	}
	code, err := s.codes.Generate(phone)
	if err != nil {
		return "", err
	}
	if sendErr := s.sender.SendCode(ctx, phone, code); sendErr != nil {
		s.logger.Warn().Err(sendErr).Msg("sms delivery failed")
	}
	if s.devMode {
		return code, nil
	}
	return "", nil
}

// LoginSMS verifies the code for phone and returns a token pair. An unknown
// phone is registered on the spot with a masked default nickname.
func (s *AuthService) LoginSMS(ctx context.Context, phone, code string) (*AuthResult, error) {
	if !userdomain.ValidPhone(phone) {
		return nil, ErrInvalidPhone
	}
	if err := s.codes.Verify(phone, code); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = newUser(phone, "", "")
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	}
	return s.issuePair(user)
}

// LoginPassword authenticates with phone and password.
func (s *AuthService) LoginPassword(ctx context.Context, phone, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.PasswordHash == "" {
		return nil, ErrNoPassword
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	return s.issuePair(user)
}

// Register creates an account with a password after verifying the SMS code.
// The phone must not already be registered. An empty nickname falls back to
// the masked phone.
func (s *AuthService) Register(ctx context.Context, phone, code, password, nickname string) (*AuthResult, error) {
	if !userdomain.ValidPhone(phone) {
		return nil, ErrInvalidPhone
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if err := s.codes.Verify(phone, code); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	user := newUser(phone, hash, nickname)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issuePair(user)
}

// Refresh exchanges a valid refresh token for a new pair, revoking the old
// token so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.Verify(refreshToken, security.TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	s.tokens.Revoke(refreshToken)
	return s.issuePair(user)
}

// CurrentUser returns the account for an authenticated user id.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*userdomain.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Public(), nil
}

// Logout revokes the presented access token and, when provided, the refresh
// token. Malformed or expired tokens are ignored so logout always succeeds.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) {
	s.tokens.Revoke(accessToken)
	if refreshToken != "" {
		s.tokens.Revoke(refreshToken)
	}
}

func (s *AuthService) issuePair(user *userdomain.User) (*AuthResult, error) {
	access, err := s.tokens.Issue(user.ID, security.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Issue(user.ID, security.TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		User:         user.Public(),
	}, nil
}

func newUser(phone, passwordHash, nickname string) *userdomain.User {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = userdomain.DefaultNickname(phone)
	}
	now := time.Now().UTC()
	return &userdomain.User{
		ID:            uuid.New().String(),
		Phone:         phone,
		PasswordHash:  passwordHash,
		Nickname:      nickname,
		Plan:          "free",
		JoinDate:      now,
		Notifications: userdomain.DefaultNotifications(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
