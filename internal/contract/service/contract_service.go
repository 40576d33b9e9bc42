// Package service implements saved contract records and favorites, including
// the per-user review counter.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/youzhaozhao/ContractClarity/internal/contract/domain"
)

// ErrNotFound is returned when the contract does not exist for the user.
var ErrNotFound = errors.New("contract not found")

// Repo is the contract repository surface needed by the service.
type Repo interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Contract, error)
	Create(ctx context.Context, c *domain.Contract) error
	Delete(ctx context.Context, userID, contractID string) (bool, error)
	ListFavoriteIDs(ctx context.Context, userID string) ([]string, error)
	AddFavorite(ctx context.Context, userID, contractID string) error
	RemoveFavorite(ctx context.Context, userID, contractID string) error
}

// CounterRepo adjusts the owner's review counter as records come and go.
type CounterRepo interface {
	AdjustReviewCount(ctx context.Context, id string, delta int) error
}

// ContractService wraps the repositories with the record business rules.
type ContractService struct {
	repo  Repo
	users CounterRepo
}

// NewContractService returns a ContractService backed by the given repos.
func NewContractService(repo Repo, users CounterRepo) *ContractService {
	return &ContractService{repo: repo, users: users}
}

// List returns the user's saved records, newest first.
func (s *ContractService) List(ctx context.Context, userID string) ([]*domain.Contract, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Create saves a record for the user and bumps the review counter. A missing
// id or date is filled in server-side.
func (s *ContractService) Create(ctx context.Context, userID string, c *domain.Contract) (*domain.Contract, error) {
	now := time.Now().UTC()
	c.UserID = userID
	c.CreatedAt = now
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Date == "" {
		c.Date = now.Format("2006-01-02")
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.users.AdjustReviewCount(ctx, userID, 1); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes the user's record and decrements the review counter.
func (s *ContractService) Delete(ctx context.Context, userID, contractID string) error {
	found, err := s.repo.Delete(ctx, userID, contractID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return s.users.AdjustReviewCount(ctx, userID, -1)
}

// Favorites returns the contract ids the user has favorited.
func (s *ContractService) Favorites(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.repo.ListFavoriteIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// AddFavorite marks the contract as favorited. Idempotent.
func (s *ContractService) AddFavorite(ctx context.Context, userID, contractID string) error {
	return s.repo.AddFavorite(ctx, userID, contractID)
}

// RemoveFavorite unmarks the contract. Removing a non-favorite is a no-op.
func (s *ContractService) RemoveFavorite(ctx context.Context, userID, contractID string) error {
	return s.repo.RemoveFavorite(ctx, userID, contractID)
}
