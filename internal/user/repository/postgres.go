// Package repository persists user records in Postgres via sqlx.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/youzhaozhao/ContractClarity/internal/user/domain"
)

// PostgresRepository stores users in the users table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a user repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type userRow struct {
	ID            string         `db:"id"`
	Phone         string         `db:"phone"`
	PasswordHash  sql.NullString `db:"password_hash"`
	Nickname      sql.NullString `db:"nickname"`
	Email         string         `db:"email"`
	Bio           string         `db:"bio"`
	Plan          string         `db:"plan"`
	ReviewCount   int            `db:"review_count"`
	JoinDate      time.Time      `db:"join_date"`
	Notifications []byte         `db:"notifications"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

const userColumns = `id, phone, password_hash, nickname, email, bio, plan, review_count, join_date, notifications, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

// GetByPhone returns the user for phone, or nil if not found.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

// Create persists the user. The user must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	notif, err := json.Marshal(u.Notifications)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		u.ID, u.Phone,
		sql.NullString{String: u.PasswordHash, Valid: u.PasswordHash != ""},
		sql.NullString{String: u.Nickname, Valid: u.Nickname != ""},
		u.Email, u.Bio, u.Plan, u.ReviewCount, u.JoinDate, notif, u.CreatedAt, u.UpdatedAt)
	return err
}

// UpdateProfile updates the provided fields (nil means keep current value).
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, nickname, email, bio *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET
		   nickname = COALESCE($2, nickname),
		   email    = COALESCE($3, email),
		   bio      = COALESCE($4, bio),
		   updated_at = $5
		 WHERE id = $1`,
		id, nickname, email, bio, time.Now().UTC())
	return err
}

// UpdatePasswordHash replaces the user's credential hash.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, hash, time.Now().UTC())
	return err
}

// UpdateNotifications replaces the user's notification preferences.
func (r *PostgresRepository) UpdateNotifications(ctx context.Context, id string, n domain.Notifications) error {
	notif, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE users SET notifications = $2, updated_at = $3 WHERE id = $1`,
		id, notif, time.Now().UTC())
	return err
}

// Delete removes the user; contracts and favorites cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// AdjustReviewCount adds delta to review_count, clamped at zero.
func (r *PostgresRepository) AdjustReviewCount(ctx context.Context, id string, delta int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET review_count = GREATEST(0, review_count + $2), updated_at = $3 WHERE id = $1`,
		id, delta, time.Now().UTC())
	return err
}

func rowToDomain(row *userRow) *domain.User {
	u := &domain.User{
		ID:          row.ID,
		Phone:       row.Phone,
		Email:       row.Email,
		Bio:         row.Bio,
		Plan:        row.Plan,
		ReviewCount: row.ReviewCount,
		JoinDate:    row.JoinDate,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.PasswordHash.Valid {
		u.PasswordHash = row.PasswordHash.String
	}
	if row.Nickname.Valid {
		u.Nickname = row.Nickname.String
	}
	if len(row.Notifications) > 0 {
		_ = json.Unmarshal(row.Notifications, &u.Notifications)
	}
	return u
}
