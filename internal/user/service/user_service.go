// Package service implements account maintenance: profile edits, password
// changes, notification preferences, and account deletion.
package service

import (
	"context"
	"errors"

	"github.com/youzhaozhao/ContractClarity/internal/security"
	"github.com/youzhaozhao/ContractClarity/internal/user/domain"
)

// Sentinel errors for the user service; the handler maps them to HTTP codes.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
)

const minPasswordLength = 6

// Repo is the user repository surface needed by the service.
type Repo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, nickname, email, bio *string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateNotifications(ctx context.Context, id string, n domain.Notifications) error
	Delete(ctx context.Context, id string) error
}

// UserService wraps the repository with the account business rules.
type UserService struct {
	repo   Repo
	hasher *security.Hasher
}

// NewUserService returns a UserService backed by repo.
func NewUserService(repo Repo, hasher *security.Hasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// UpdateProfile applies the provided fields (nil keeps the current value) and
// returns the updated account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, nickname, email, bio *string) (*domain.PublicUser, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(ctx, user.ID, nickname, email, bio); err != nil {
		return nil, err
	}
	updated, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return updated.Public(), nil
}

// ChangePassword sets a new password. If the account already has a password
// the old one must be presented and match; passwordless accounts (SMS-only
// signups) can set a first password without one.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash != "" {
		if err := s.hasher.Compare(user.PasswordHash, []byte(oldPassword)); err != nil {
			return ErrWrongPassword
		}
	}
	hash, err := s.hasher.Hash([]byte(newPassword))
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, user.ID, hash)
}

// UpdateNotifications replaces the notification preferences.
func (s *UserService) UpdateNotifications(ctx context.Context, userID string, n domain.Notifications) error {
	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.UpdateNotifications(ctx, user.ID, n)
}

// DeleteAccount removes the account; contracts and favorites cascade in the
// database. The caller revokes the presented tokens.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, user.ID)
}

func (s *UserService) get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
