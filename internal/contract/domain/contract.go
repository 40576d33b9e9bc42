package domain

import (
	"encoding/json"
	"time"
)

// Contract is one saved analysis record. Issues keeps the client-provided
// issue list as raw JSON; the server never interprets it.
type Contract struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Date         string          `json:"date"`
	Category     string          `json:"category"`
	ContractType string          `json:"contract_type"`
	RiskScore    int             `json:"risk_score"`
	OverallRisk  string          `json:"overall_risk"`
	Summary      string          `json:"summary"`
	Jurisdiction string          `json:"jurisdiction"`
	Issues       json.RawMessage `json:"issues"`
	CreatedAt    time.Time       `json:"created_at"`
}
