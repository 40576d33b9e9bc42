// Package repository persists contract records and favorites in Postgres via sqlx.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/youzhaozhao/ContractClarity/internal/contract/domain"
)

const listLimit = 200

// PostgresRepository stores contracts and favorites.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a contract repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type contractRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Date         string    `db:"date"`
	Category     string    `db:"category"`
	ContractType string    `db:"contract_type"`
	RiskScore    int       `db:"risk_score"`
	OverallRisk  string    `db:"overall_risk"`
	Summary      string    `db:"summary"`
	Jurisdiction string    `db:"jurisdiction"`
	Issues       []byte    `db:"issues"`
	CreatedAt    time.Time `db:"created_at"`
}

const contractColumns = `id, user_id, date, category, contract_type, risk_score, overall_risk, summary, jurisdiction, issues, created_at`

// ListByUser returns the user's contracts, newest first, capped at 200.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Contract, error) {
	var rows []contractRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT `+contractColumns+` FROM contracts WHERE user_id = $1 ORDER BY date DESC LIMIT $2`,
		userID, listLimit)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Contract, 0, len(rows))
	for i := range rows {
		out = append(out, rowToDomain(&rows[i]))
	}
	return out, nil
}

// Create persists the contract record.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Contract) error {
	issues := c.Issues
	if len(issues) == 0 {
		issues = json.RawMessage(`[]`)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contracts (`+contractColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.UserID, c.Date, c.Category, c.ContractType, c.RiskScore,
		c.OverallRisk, c.Summary, c.Jurisdiction, []byte(issues), c.CreatedAt)
	return err
}

// Delete removes the user's contract. Returns false if no such record exists
// for this user.
func (r *PostgresRepository) Delete(ctx context.Context, userID, contractID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM contracts WHERE id = $1 AND user_id = $2`, contractID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFavoriteIDs returns the contract ids the user has favorited, newest first.
func (r *PostgresRepository) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids,
		`SELECT contract_id FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AddFavorite marks the contract as favorited. Idempotent.
func (r *PostgresRepository) AddFavorite(ctx context.Context, userID, contractID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, contract_id, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, contract_id) DO NOTHING`,
		userID, contractID, time.Now().UTC())
	return err
}

// RemoveFavorite unmarks the contract. Removing a non-favorite is a no-op.
func (r *PostgresRepository) RemoveFavorite(ctx context.Context, userID, contractID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND contract_id = $2`, userID, contractID)
	return err
}

func rowToDomain(row *contractRow) *domain.Contract {
	issues := json.RawMessage(row.Issues)
	if len(issues) == 0 {
		issues = json.RawMessage(`[]`)
	}
	return &domain.Contract{
		ID:           row.ID,
		UserID:       row.UserID,
		Date:         row.Date,
		Category:     row.Category,
		ContractType: row.ContractType,
		RiskScore:    row.RiskScore,
		OverallRisk:  row.OverallRisk,
		Summary:      row.Summary,
		Jurisdiction: row.Jurisdiction,
		Issues:       issues,
		CreatedAt:    row.CreatedAt,
	}
}
